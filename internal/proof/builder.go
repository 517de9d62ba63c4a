package proof

// Чистое форматирование квитанций: никакого I/O и состояния.

import (
	"fmt"

	"github.com/theefatymah/Aurralis/internal/domain"
)

const (
	explorerTemplate       = "https://arc-explorer.com/tx/%s"
	confirmedConfirmations = 12
)

// ExplorerURL строит ссылку на Arc Explorer по хэшу транзакции.
func ExplorerURL(txHash string) string {
	return fmt.Sprintf(explorerTemplate, txHash)
}

// Build собирает proof-документ: хэш, ссылка и трехшаговый чек-лист
// validate → transfer → confirm. Для подтвержденного перевода все шаги completed.
func Build(txHash string, amount float64, recipient string) domain.ProofData {
	return domain.ProofData{
		TxHash:        txHash,
		ExplorerURL:   ExplorerURL(txHash),
		Amount:        amount,
		Currency:      domain.DefaultCurrency,
		Recipient:     recipient,
		Status:        domain.TransferConfirmed,
		Confirmations: confirmedConfirmations,
		Steps: []domain.ProofStep{
			{ID: "validate", Label: "Validating Policy", Status: "completed"},
			{ID: "transfer", Label: "Moving USDC", Status: "completed"},
			{ID: "confirm", Label: "Confirming on Arc", Status: "completed"},
		},
	}
}
