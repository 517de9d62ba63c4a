package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/theefatymah/Aurralis/internal/audit"
)

// WriteBatch пишет пачку событий trail одним INSERT-ом.
// Плейсхолдеры строим динамически: размер пачки задает воркер.
func (r *Repo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в таблице audit_events
	numFields := 8
	placeholderStr := ""
	vals := make([]interface{}, 0, len(events)*numFields)

	for i, e := range events {
		p := i * numFields
		placeholderStr += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d),",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8)

		vals = append(vals,
			e.ID, e.TraceID, e.ActivityID, e.Action,
			e.Status, e.Detail, e.Timestamp, e.DurationMs,
		)
	}

	// Убираем лишнюю запятую в конце
	query := fmt.Sprintf(
		"INSERT INTO audit_events (id, trace_id, activity_id, action, status, detail, timestamp, duration_ms) VALUES %s",
		strings.TrimSuffix(placeholderStr, ","),
	)

	if _, err := r.pool.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: failed to write audit batch: %w", err)
	}
	return nil
}

// FetchEvents — выборка trail для Console API с фильтрами по заявке и действию.
func (r *Repo) FetchEvents(ctx context.Context, activityID, action string) ([]audit.Event, error) {
	query := `
		SELECT id, trace_id, activity_id, action, status, detail, timestamp, duration_ms
		FROM audit_events`

	var conds []string
	var args []interface{}
	if activityID != "" {
		args = append(args, activityID)
		conds = append(conds, fmt.Sprintf("activity_id = $%d", len(args)))
	}
	if action != "" {
		args = append(args, action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC LIMIT 500"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query audit events: %w", err)
	}
	defer rows.Close()

	results := make([]audit.Event, 0)
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.ID, &e.TraceID, &e.ActivityID, &e.Action,
			&e.Status, &e.Detail, &e.Timestamp, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan audit event: %w", err)
		}
		results = append(results, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}
	return results, nil
}
