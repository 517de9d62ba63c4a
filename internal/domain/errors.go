package domain

import "errors"

// Таксономия ошибок ядра. Хендлеры маппят их в HTTP-коды,
// всё остальное считается неожиданным сбоем (500 + обязательный lock release).
var (
	// ErrNotFound — политика или заявка не существует (404).
	ErrNotFound = errors.New("record not found")

	// ErrLocked — заявка уже обрабатывается конкурентным approve (409).
	ErrLocked = errors.New("activity is already being processed")

	// ErrInvalidState — статус заявки не допускает операцию (400).
	ErrInvalidState = errors.New("invalid activity status for this operation")
)

// PolicyViolationError — повторная валидация при approve провалилась (403).
// Несет первое нарушение для тела ответа.
type PolicyViolationError struct {
	Violation string
}

func (e *PolicyViolationError) Error() string {
	return e.Violation
}
