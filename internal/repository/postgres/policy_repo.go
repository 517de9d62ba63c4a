package postgres

/*
Файл policy_repo.go отвечает за хранение версий политики трат.
Политика — append-only: обновление создает новую строку, "текущей"
считается последняя по created_at. Исключение — current_monthly_spent,
который продвигается аддитивным UPDATE-ом по месту (AdvanceSpend).
*/

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// CurrentPolicy возвращает действующую (последнюю созданную) политику.
func (r *Repo) CurrentPolicy(ctx context.Context) (*domain.Policy, error) {
	query := `
		SELECT id, max_tx_amount, monthly_budget, current_monthly_spent,
		       required_approval_threshold, allow_list, block_list, created_at
		FROM policies
		ORDER BY created_at DESC
		LIMIT 1`

	p := &domain.Policy{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&p.ID, &p.MaxTxAmount, &p.MonthlyBudget, &p.CurrentMonthlySpent,
		&p.RequiredApprovalThreshold, &p.AllowList, &p.BlockList, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: failed to get current policy: %w", err)
	}
	return p, nil
}

func (r *Repo) CreatePolicy(ctx context.Context, p *domain.Policy) error {
	query := `
		INSERT INTO policies (id, max_tx_amount, monthly_budget, current_monthly_spent,
		                      required_approval_threshold, allow_list, block_list, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.MaxTxAmount, p.MonthlyBudget, p.CurrentMonthlySpent,
		p.RequiredApprovalThreshold, p.AllowList, p.BlockList, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create policy: %w", err)
	}
	return nil
}

func (r *Repo) UpdatePolicy(ctx context.Context, p *domain.Policy) error {
	query := `
		UPDATE policies
		SET max_tx_amount = $1,
		    monthly_budget = $2,
		    required_approval_threshold = $3,
		    allow_list = $4,
		    block_list = $5
		WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query,
		p.MaxTxAmount, p.MonthlyBudget, p.RequiredApprovalThreshold,
		p.AllowList, p.BlockList, p.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to update policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdvanceSpend аддитивно двигает месячный спенд. Именно аддитивно
// (spent = spent + $1), а не перезаписью: параллельные approve не должны
// терять чужие приращения.
func (r *Repo) AdvanceSpend(ctx context.Context, policyID string, amount float64) error {
	query := `UPDATE policies SET current_monthly_spent = current_monthly_spent + $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, amount, policyID)
	if err != nil {
		return fmt.Errorf("postgres: failed to advance spend: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
