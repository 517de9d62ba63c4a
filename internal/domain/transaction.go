package domain

import "time"

// TransferStatus — исход исполнения на платежном бэкенде.
type TransferStatus string

const (
	TransferPendingOnChain TransferStatus = "pending_on_chain" // Средства в полете, подтверждения нет
	TransferConfirmed      TransferStatus = "confirmed"
)

// Transaction — запись об одной попытке исполнения (один-к-одному с Activity).
// Создается ровно один раз; после записи неизменяема, кроме продвижения confirmations
// (опрос подтверждений — вне системы).
type Transaction struct {
	ID            string         `json:"id"`
	ActivityID    string         `json:"activity_id"`
	TxHash        string         `json:"tx_hash"`
	ExplorerURL   string         `json:"explorer_url"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Recipient     string         `json:"recipient"`
	Status        TransferStatus `json:"status"`
	Confirmations int            `json:"confirmations"`
	CreatedAt     time.Time      `json:"created_at"`
}
