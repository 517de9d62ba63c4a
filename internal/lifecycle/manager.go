package lifecycle

/*
Manager — оркестрирующий конечный автомат заявки:
создание из intent, решение оператора (approve/deny), повторная валидация
на момент исполнения, захват/снятие lock, запись Transaction, продвижение
месячного спенда и выдача proof.

Самый важный инвариант системы: один activity id исполняется не более
одного раза. Его держит атомарный AcquireLock в сторе (conditional update);
всё остальное здесь — дисциплина снятия lock на любом пути выхода.
*/

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/audit"
	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/extractor"
	"github.com/theefatymah/Aurralis/internal/infra"
	"github.com/theefatymah/Aurralis/internal/notify"
	"github.com/theefatymah/Aurralis/internal/policy"
	"github.com/theefatymah/Aurralis/internal/proof"
	"github.com/theefatymah/Aurralis/internal/risk"
	"github.com/theefatymah/Aurralis/internal/transfer"
)

// TransferExecutor — исполнение одобренного intent против платежного бэкенда.
type TransferExecutor interface {
	Transfer(ctx context.Context, amount float64, recipient string) (*transfer.Result, error)
}

// Auditor — приемник событий audit trail (асинхронный, не блокирует).
type Auditor interface {
	Log(event audit.Event)
}

// NonTransactionalMessage возвращается, когда запрос не распознан как платеж.
const NonTransactionalMessage = "I'd be happy to help! Please specify an amount and recipient. For example: 'Send $100 to Stripe'"

type Manager struct {
	activities   ActivityStore
	transactions TransactionStore
	policies     PolicyStore
	extractor    extractor.Extractor
	executor     TransferExecutor
	auditor      Auditor
	notifier     notify.Notifier
	metrics      *Metrics
	risk         *risk.Analyzer
	logger       *zap.Logger
}

func NewManager(
	activities ActivityStore,
	transactions TransactionStore,
	policies PolicyStore,
	ex extractor.Extractor,
	executor TransferExecutor,
	auditor Auditor,
	notifier notify.Notifier,
	metrics *Metrics,
	logger *zap.Logger,
) *Manager {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Manager{
		activities:   activities,
		transactions: transactions,
		policies:     policies,
		extractor:    ex,
		executor:     executor,
		auditor:      auditor,
		notifier:     notifier,
		metrics:      metrics,
		risk:         risk.NewAnalyzer(logger),
		logger:       logger.Named("lifecycle"),
	}
}

// IntentOutcome — результат обработки текстового запроса.
type IntentOutcome struct {
	IsTransaction bool
	Message       string // заполнено только для нетранзакционного исхода
	Activity      *domain.Activity
	Validation    policy.Result

	// Подсказки для Decision Card: нужен ли явный клик человека и уровень риска
	RequiresApproval bool
	RiskLevel        string
}

// ProcessIntent превращает текст в заявку: извлечение intent, валидация,
// создание Activity со статусом по вердикту.
func (m *Manager) ProcessIntent(ctx context.Context, query string) (*IntentOutcome, error) {
	pol, err := m.policies.CurrentPolicy(ctx)
	if err != nil {
		return nil, err
	}

	intent, err := m.extractor.ProcessQuery(ctx, query, *pol)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		m.metrics.IntentsTotal.WithLabelValues("non_transaction").Inc()
		return &IntentOutcome{
			IsTransaction: false,
			Message:       NonTransactionalMessage,
		}, nil
	}

	validation := policy.Validate(*intent, *pol)
	status := policy.DetermineStatus(validation.IsValid)

	act := &domain.Activity{
		ID:               uuid.New().String(),
		UserQuery:        query,
		StructuredIntent: *intent,
		AIReasoning:      intent.Reasoning,
		Status:           status,
		PolicyChecks:     validation.Checks,
		CreatedAt:        time.Now(),
	}

	if err := m.activities.InsertActivity(ctx, act); err != nil {
		return nil, err
	}

	outcome := "transaction"
	if !validation.IsValid {
		outcome = "flagged"
	}
	m.metrics.IntentsTotal.WithLabelValues(outcome).Inc()

	m.auditor.Log(audit.Event{
		ID:         uuid.New().String(),
		TraceID:    infra.TraceIDFrom(ctx),
		ActivityID: act.ID,
		Action:     audit.ActionIntentProcessed,
		Status:     string(status),
		Detail:     firstOrEmpty(validation.Violations),
	})
	m.notifier.ActivityChanged(ctx, act.ID, status)

	return &IntentOutcome{
		IsTransaction:    true,
		Activity:         act,
		Validation:       validation,
		RequiresApproval: m.risk.IsRequired(*pol, *intent, !validation.IsValid),
		RiskLevel:        m.risk.Level(*pol, *intent),
	}, nil
}

// ApprovalResult — данные квитанции, отдаваемые после исполнения.
type ApprovalResult struct {
	ActivityID  string                `json:"activity_id"`
	TxHash      string                `json:"tx_hash"`
	ExplorerURL string                `json:"explorer_url"`
	Status      domain.TransferStatus `json:"status"`
	ProofData   domain.ProofData      `json:"proof_data"`
}

// Approve — критический путь: захват lock, повторная валидация против
// ТЕКУЩЕЙ политики, исполнение, запись Transaction, продвижение спенда.
func (m *Manager) Approve(ctx context.Context, activityID string) (res *ApprovalResult, err error) {
	start := time.Now()
	defer func() {
		m.metrics.ApprovalDuration.Observe(time.Since(start).Seconds())
		m.metrics.ApprovalsTotal.WithLabelValues(approvalLabel(res, err)).Inc()
	}()

	// Шаги 1–4 спецификации одним атомарным conditional update:
	// not found / lock занят / статус не решаемый различаются типом ошибки.
	act, err := m.activities.AcquireLock(ctx, activityID, time.Now())
	if err != nil {
		return nil, err
	}

	m.auditor.Log(audit.Event{
		ID:         uuid.New().String(),
		TraceID:    infra.TraceIDFrom(ctx),
		ActivityID: activityID,
		Action:     audit.ActionApproveStarted,
		Status:     string(domain.StatusExecuting),
	})

	// С этого момента lock захвачен: любой неожиданный выход обязан
	// снять его и пометить заявку failed. PolicyViolation разруливается
	// ниже отдельно (flagged + unlock).
	defer func() {
		if err == nil {
			return
		}
		var pv *domain.PolicyViolationError
		if errors.As(err, &pv) {
			return
		}
		// Исходный ctx мог быть уже отменен — cleanup делаем без его отмены
		cleanupCtx := context.WithoutCancel(ctx)
		if relErr := m.activities.ReleaseLock(cleanupCtx, activityID, domain.StatusFailed); relErr != nil {
			m.logger.Error("failed to release lock after error",
				zap.String("activity_id", activityID),
				zap.NamedError("cause", err),
				zap.Error(relErr))
		}
		m.notifier.ActivityChanged(cleanupCtx, activityID, domain.StatusFailed)
	}()

	// Шаг 5: повторная валидация против политики, действующей СЕЙЧАС.
	// Исполнение по протухшему одобрению не запускается.
	pol, perr := m.policies.CurrentPolicy(ctx)
	if perr != nil && !errors.Is(perr, domain.ErrNotFound) {
		err = perr
		return nil, err
	}
	if pol != nil {
		validation := policy.Validate(act.StructuredIntent, *pol)
		if !validation.IsValid {
			if relErr := m.activities.ReleaseLock(ctx, activityID, domain.StatusFlaggedByPolicy); relErr != nil {
				err = relErr // неожиданный сбой: defer добьет до failed
				return nil, err
			}
			m.notifier.ActivityChanged(ctx, activityID, domain.StatusFlaggedByPolicy)
			err = &domain.PolicyViolationError{Violation: validation.Violations[0]}
			return nil, err
		}
	}

	// Шаг 6: исполнение. Таймаут бэкенда вернется БЕЗ ошибки как
	// pending_on_chain (деньги могут быть в полете).
	intent := act.StructuredIntent
	tr, terr := m.executor.Transfer(ctx, intent.Amount, intent.Recipient)
	if terr != nil {
		err = terr
		return nil, err
	}
	if tr.TimedOut {
		m.metrics.TransferTimeouts.Inc()
	}

	m.auditor.Log(audit.Event{
		ID:         uuid.New().String(),
		TraceID:    infra.TraceIDFrom(ctx),
		ActivityID: activityID,
		Action:     audit.ActionTransferIssued,
		Status:     string(tr.Status),
		Detail:     tr.TxHash,
		DurationMs: time.Since(start).Milliseconds(),
	})

	// Шаг 7: запись Transaction (одна на попытку исполнения)
	currency := intent.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	txRec := &domain.Transaction{
		ID:            uuid.New().String(),
		ActivityID:    activityID,
		TxHash:        tr.TxHash,
		ExplorerURL:   proof.ExplorerURL(tr.TxHash),
		Amount:        intent.Amount,
		Currency:      currency,
		Recipient:     intent.Recipient,
		Status:        tr.Status,
		Confirmations: 0,
		CreatedAt:     time.Now(),
	}
	if err = m.transactions.InsertTransaction(ctx, txRec); err != nil {
		return nil, err
	}

	// Шаг 8: executed при подтверждении, иначе executing (in flight,
	// сверка позже по тому же activity id)
	finalStatus := domain.StatusExecuting
	if tr.Status == domain.TransferConfirmed {
		finalStatus = domain.StatusExecuted
	}
	if err = m.activities.ReleaseLock(ctx, activityID, finalStatus); err != nil {
		return nil, err
	}

	// Шаг 9: спенд двигаем только после фактически запущенного перевода.
	// Отказ здесь не отменяет исполнение — перевод уже ушел.
	if pol != nil {
		if serr := m.policies.AdvanceSpend(ctx, pol.ID, intent.Amount); serr != nil {
			m.logger.Error("failed to advance monthly spend",
				zap.String("policy_id", pol.ID),
				zap.Float64("amount", intent.Amount),
				zap.Error(serr))
		}
	}

	m.auditor.Log(audit.Event{
		ID:         uuid.New().String(),
		TraceID:    infra.TraceIDFrom(ctx),
		ActivityID: activityID,
		Action:     audit.ActionApproveFinished,
		Status:     string(finalStatus),
		Detail:     tr.TxHash,
		DurationMs: time.Since(start).Milliseconds(),
	})
	m.notifier.ActivityChanged(ctx, activityID, finalStatus)

	// Шаг 10: proof
	res = &ApprovalResult{
		ActivityID:  activityID,
		TxHash:      tr.TxHash,
		ExplorerURL: proof.ExplorerURL(tr.TxHash),
		Status:      tr.Status,
		ProofData:   proof.Build(tr.TxHash, intent.Amount, intent.Recipient),
	}
	return res, nil
}

// Deny переводит заявку в rejected. Lock не нужен: внешних побочных
// эффектов нет, защиту от гонок дает conditional update статуса.
func (m *Manager) Deny(ctx context.Context, activityID string) error {
	err := m.activities.SetStatusIf(ctx, activityID,
		[]domain.ActivityStatus{domain.StatusPendingApproval, domain.StatusFlaggedByPolicy},
		domain.StatusRejected)
	if err != nil {
		return err
	}

	m.auditor.Log(audit.Event{
		ID:         uuid.New().String(),
		TraceID:    infra.TraceIDFrom(ctx),
		ActivityID: activityID,
		Action:     audit.ActionDenied,
		Status:     string(domain.StatusRejected),
	})
	m.notifier.ActivityChanged(ctx, activityID, domain.StatusRejected)
	return nil
}

// GetActivity возвращает заявку вместе с ее транзакцией.
func (m *Manager) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	return m.activities.GetActivity(ctx, id)
}

// ListActivities — все заявки, новые первыми.
func (m *Manager) ListActivities(ctx context.Context) ([]*domain.Activity, error) {
	list, err := m.activities.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	// Фронтенд должен получить [], а не null
	if list == nil {
		return []*domain.Activity{}, nil
	}
	return list, nil
}

func approvalLabel(res *ApprovalResult, err error) string {
	switch {
	case err == nil && res != nil && res.Status == domain.TransferConfirmed:
		return "executed"
	case err == nil:
		return "executing"
	case errors.Is(err, domain.ErrLocked):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrNotFound):
		return "invalid_state"
	default:
		var pv *domain.PolicyViolationError
		if errors.As(err, &pv) {
			return "revalidation_failed"
		}
		return "failed"
	}
}

func firstOrEmpty(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
