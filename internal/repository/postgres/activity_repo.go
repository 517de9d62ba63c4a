package postgres

/*
Файл activity_repo.go содержит хранение заявок (activities) и механику их
эксклюзивного исполнения. Lock реализован как conditional update: проверка
"не залочено и статус решаемый" и захват происходят одним UPDATE-ом,
поэтому гонка двух одновременных approve разрешается на стороне базы.
*/

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/theefatymah/Aurralis/internal/domain"
)

const activityColumns = `
	a.id, a.user_query, a.structured_intent, a.ai_reasoning, a.status,
	a.policy_checks, a.locked, a.locked_at, a.created_at,
	t.id, t.tx_hash, t.explorer_url, t.amount, t.currency, t.recipient,
	t.status, t.confirmations, t.created_at`

func (r *Repo) InsertActivity(ctx context.Context, a *domain.Activity) error {
	intent, err := json.Marshal(a.StructuredIntent)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal intent: %w", err)
	}
	checks, err := json.Marshal(a.PolicyChecks)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal policy checks: %w", err)
	}

	query := `
		INSERT INTO activities (id, user_query, structured_intent, ai_reasoning, status, policy_checks, locked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`

	_, err = r.pool.Exec(ctx, query,
		a.ID, a.UserQuery, intent, a.AIReasoning, a.Status, checks, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert activity: %w", err)
	}
	return nil
}

// GetActivity возвращает заявку вместе с ее транзакцией (LEFT JOIN: транзакции
// может еще не быть).
func (r *Repo) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities a
		LEFT JOIN transactions t ON t.activity_id = a.id
		WHERE a.id = $1`

	act, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: failed to get activity: %w", err)
	}
	return act, nil
}

// ListActivities — полная лента заявок, новые первыми.
func (r *Repo) ListActivities(ctx context.Context) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities a
		LEFT JOIN transactions t ON t.activity_id = a.id
		ORDER BY a.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query activities: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]*domain.Activity, 0)
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan activity: %w", err)
		}
		results = append(results, act)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}

// AcquireLock атомарно захватывает заявку под исполнение.
// Условие WHERE закрывает сразу три исхода отказа; какой именно случился,
// выясняем дополнительным SELECT-ом только на неуспехе (холодный путь).
func (r *Repo) AcquireLock(ctx context.Context, id string, at time.Time) (*domain.Activity, error) {
	query := `
		UPDATE activities
		SET locked = TRUE,
		    locked_at = $2,
		    status = $3
		WHERE id = $1
		  AND locked = FALSE
		  AND status IN ($4, $5)
		RETURNING id, user_query, structured_intent, ai_reasoning, status, policy_checks, locked, locked_at, created_at`

	row := r.pool.QueryRow(ctx, query, id, at, domain.StatusExecuting,
		domain.StatusPendingApproval, domain.StatusFlaggedByPolicy)

	var (
		act       domain.Activity
		intentRaw []byte
		checksRaw []byte
		lockedAt  sql.NullTime
	)
	err := row.Scan(&act.ID, &act.UserQuery, &intentRaw, &act.AIReasoning,
		&act.Status, &checksRaw, &act.Locked, &lockedAt, &act.CreatedAt)
	if err == nil {
		if lockedAt.Valid {
			val := lockedAt.Time
			act.LockedAt = &val
		}
		if err := json.Unmarshal(intentRaw, &act.StructuredIntent); err != nil {
			return nil, fmt.Errorf("postgres: corrupt structured_intent: %w", err)
		}
		if err := json.Unmarshal(checksRaw, &act.PolicyChecks); err != nil {
			return nil, fmt.Errorf("postgres: corrupt policy_checks: %w", err)
		}
		return &act, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: failed to acquire lock: %w", err)
	}

	// UPDATE никого не нашел: разбираемся, почему именно
	var (
		locked bool
		status domain.ActivityStatus
	)
	err = r.pool.QueryRow(ctx, `SELECT locked, status FROM activities WHERE id = $1`, id).
		Scan(&locked, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: failed to classify lock failure: %w", err)
	}
	if locked {
		return nil, domain.ErrLocked
	}
	return nil, domain.ErrInvalidState
}

// ReleaseLock снимает lock и выставляет финальный статус.
func (r *Repo) ReleaseLock(ctx context.Context, id string, status domain.ActivityStatus) error {
	query := `UPDATE activities SET locked = FALSE, locked_at = NULL, status = $1 WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to release lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatusIf — conditional update статуса (защита от Double Decision):
// перевод выполняется только из перечисленных исходных статусов.
func (r *Repo) SetStatusIf(ctx context.Context, id string, from []domain.ActivityStatus, to domain.ActivityStatus) error {
	query := `UPDATE activities SET status = $1 WHERE id = $2 AND status = ANY($3)`

	fromStr := make([]string, 0, len(from))
	for _, s := range from {
		fromStr = append(fromStr, string(s))
	}

	tag, err := r.pool.Exec(ctx, query, to, id, fromStr)
	if err != nil {
		return fmt.Errorf("postgres: failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Либо ID неверный, либо решение по заявке уже было принято ранее
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM activities WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("postgres: failed to classify status failure: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}
	return nil
}

// scanActivity собирает заявку из строки JOIN-а activities x transactions.
// Колонки транзакции nullable: LEFT JOIN отдает NULL, пока исполнения не было.
func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		act       domain.Activity
		intentRaw []byte
		checksRaw []byte
		lockedAt  sql.NullTime

		txID, txHash, txURL, txCurrency, txRecipient, txStatus sql.NullString
		txAmount                                               sql.NullFloat64
		txConfirmations                                        sql.NullInt64
		txCreatedAt                                            sql.NullTime
	)

	err := row.Scan(
		&act.ID, &act.UserQuery, &intentRaw, &act.AIReasoning, &act.Status,
		&checksRaw, &act.Locked, &lockedAt, &act.CreatedAt,
		&txID, &txHash, &txURL, &txAmount, &txCurrency, &txRecipient,
		&txStatus, &txConfirmations, &txCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lockedAt.Valid {
		val := lockedAt.Time
		act.LockedAt = &val
	}
	if err := json.Unmarshal(intentRaw, &act.StructuredIntent); err != nil {
		return nil, fmt.Errorf("corrupt structured_intent: %w", err)
	}
	if err := json.Unmarshal(checksRaw, &act.PolicyChecks); err != nil {
		return nil, fmt.Errorf("corrupt policy_checks: %w", err)
	}

	if txID.Valid {
		act.Transaction = &domain.Transaction{
			ID:            txID.String,
			ActivityID:    act.ID,
			TxHash:        txHash.String,
			ExplorerURL:   txURL.String,
			Amount:        txAmount.Float64,
			Currency:      txCurrency.String,
			Recipient:     txRecipient.String,
			Status:        domain.TransferStatus(txStatus.String),
			Confirmations: int(txConfirmations.Int64),
			CreatedAt:     txCreatedAt.Time,
		}
	}
	return &act, nil
}
