package domain

// DefaultCurrency — единственная поддерживаемая валюта переводов.
const DefaultCurrency = "USDC"

// Intent — структурированный запрос на перевод, извлеченный из свободного текста.
// Создается один раз на запрос и далее неизменяем.
// Amount == 0 означает "это не запрос транзакции" — отдельный исход, не ошибка валидации.
type Intent struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Recipient     string  `json:"recipient"`      // opaque address
	RecipientName string  `json:"recipientName"`  // display label
	Reasoning     string  `json:"reasoning"`
}
