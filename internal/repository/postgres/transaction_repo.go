package postgres

import (
	"context"
	"fmt"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// InsertTransaction записывает результат исполнения. UNIQUE(activity_id)
// в схеме — последний рубеж против двойного исполнения одной заявки.
func (r *Repo) InsertTransaction(ctx context.Context, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, activity_id, tx_hash, explorer_url, amount,
		                          currency, recipient, status, confirmations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.ActivityID, t.TxHash, t.ExplorerURL, t.Amount,
		t.Currency, t.Recipient, t.Status, t.Confirmations, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert transaction: %w", err)
	}
	return nil
}
