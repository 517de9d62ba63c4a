package domain

// ProofStep — один шаг чек-листа исполнения в receipt.
type ProofStep struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"` // "completed" | "in_progress"
}

// ProofData — верифицируемая квитанция: хэш, ссылка на explorer и чек-лист шагов.
type ProofData struct {
	TxHash        string         `json:"tx_hash"`
	ExplorerURL   string         `json:"explorer_url"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Recipient     string         `json:"recipient"`
	Status        TransferStatus `json:"status"`
	Confirmations int            `json:"confirmations"`
	Steps         []ProofStep    `json:"steps"`
}
