package lifecycle

import (
	"context"
	"time"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// ActivityStore описывает требования менеджера к хранилищу заявок.
type ActivityStore interface {
	InsertActivity(ctx context.Context, a *domain.Activity) error
	GetActivity(ctx context.Context, id string) (*domain.Activity, error)
	// ListActivities возвращает заявки новее-первыми вместе с их транзакциями.
	ListActivities(ctx context.Context) ([]*domain.Activity, error)

	// AcquireLock — единственная точка входа в исполнение: атомарный
	// conditional update (locked=false AND status решаемый -> locked=true,
	// status=executing). Классифицирует отказ: domain.ErrNotFound,
	// domain.ErrLocked, domain.ErrInvalidState. Plain read-then-write
	// здесь недостаточен — гонку двух approve закрывает именно стор.
	AcquireLock(ctx context.Context, id string, at time.Time) (*domain.Activity, error)

	// ReleaseLock снимает lock и выставляет финальный статус. Lock никогда
	// не должен пережить вызов Approve, каким бы ни был исход.
	ReleaseLock(ctx context.Context, id string, status domain.ActivityStatus) error

	// SetStatusIf переводит статус только из ожидаемых; возвращает
	// domain.ErrInvalidState при несовпадении, domain.ErrNotFound если заявки нет.
	SetStatusIf(ctx context.Context, id string, from []domain.ActivityStatus, to domain.ActivityStatus) error
}

// TransactionStore — запись результата исполнения (ровно одна на попытку).
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t *domain.Transaction) error
}

// PolicyStore — доступ к действующей политике и продвижение месячного спенда.
type PolicyStore interface {
	// CurrentPolicy — последняя созданная политика; domain.ErrNotFound если нет ни одной.
	CurrentPolicy(ctx context.Context) (*domain.Policy, error)
	CreatePolicy(ctx context.Context, p *domain.Policy) error
	UpdatePolicy(ctx context.Context, p *domain.Policy) error
	// AdvanceSpend аддитивно увеличивает current_monthly_spent текущей строки.
	AdvanceSpend(ctx context.Context, policyID string, amount float64) error
}
