package audit

import "time"

// Действия жизненного цикла, фиксируемые в trail.
const (
	ActionIntentProcessed = "intent.processed"
	ActionApproveStarted  = "approve.started"
	ActionTransferIssued  = "transfer.issued"
	ActionApproveFinished = "approve.finished"
	ActionDenied          = "activity.denied"
)

type Event struct {
	ID         string    `json:"id"`          // UUID события
	TraceID    string    `json:"trace_id"`    // Сквозной ID запроса
	ActivityID string    `json:"activity_id"` // К какой заявке относится
	Action     string    `json:"action"`      // Что произошло
	Status     string    `json:"status"`      // Статус заявки/перевода на момент события
	Detail     string    `json:"detail"`      // Свободный контекст (нарушение, tx hash, ошибка)
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"` // Время обработки (0, если не замерялось)
}
