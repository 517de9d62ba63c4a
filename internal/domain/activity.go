package domain

import (
	"time"
)

// ActivityStatus Статусы State Machine жизненного цикла заявки
type ActivityStatus string

const (
	StatusPendingApproval ActivityStatus = "pending_approval"  // Ждет решения человека
	StatusFlaggedByPolicy ActivityStatus = "flagged_by_policy" // Политика нашла нарушения
	StatusExecuting       ActivityStatus = "executing"         // Перевод запущен (или завис on-chain)
	StatusExecuted        ActivityStatus = "executed"          // Бэкенд подтвердил перевод
	StatusRejected        ActivityStatus = "rejected"          // Оператор отклонил
	StatusFailed          ActivityStatus = "failed"            // Неожиданный сбой после захвата lock
)

// PolicyCheck — результат одной проверки правила. Порядок в слайсе фиксирован
// и является частью контракта валидатора (audit display).
type PolicyCheck struct {
	Rule    string `json:"rule"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Activity — полная запись жизненного цикла одного запроса пользователя:
// от текста до (опционально) исполненной транзакции. Записи не удаляются (Audit Trail).
type Activity struct {
	ID               string         `json:"id"`
	UserQuery        string         `json:"user_query"`
	StructuredIntent Intent         `json:"structured_intent"`
	AIReasoning      string         `json:"ai_reasoning"`
	Status           ActivityStatus `json:"status"`
	PolicyChecks     []PolicyCheck  `json:"policy_checks"`

	// Locked — флаг взаимного исключения, отдельный от Status.
	// Заявка может быть pending_approval и кратко locked во время гонки двух approve.
	Locked   bool       `json:"locked"`
	LockedAt *time.Time `json:"locked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Transaction присоединяется при выдаче наружу (activities join transactions)
	Transaction *Transaction `json:"transaction,omitempty"`
}

// Decidable проверяет, допускает ли текущий статус решение оператора (approve/deny).
func (a *Activity) Decidable() bool {
	return a.Status == StatusPendingApproval || a.Status == StatusFlaggedByPolicy
}
