package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/notify"
)

// PolicyService обслуживает чтение/правку действующей политики.
// Правки транслируются подписчикам через Notifier (инвалидация кэшей/UI).
type PolicyService struct {
	store    PolicyStore
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewPolicyService(store PolicyStore, notifier notify.Notifier, logger *zap.Logger) *PolicyService {
	return &PolicyService{
		store:    store,
		notifier: notifier,
		logger:   logger.Named("policy-service"),
	}
}

// Current возвращает действующую политику, создавая документированный
// дефолт при первом обращении к пустой таблице.
func (s *PolicyService) Current(ctx context.Context) (*domain.Policy, error) {
	p, err := s.store.CurrentPolicy(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	def := domain.DefaultPolicy()
	def.ID = uuid.New().String()
	def.CreatedAt = time.Now()
	if err := s.store.CreatePolicy(ctx, &def); err != nil {
		return nil, err
	}
	s.logger.Info("default policy created", zap.String("policy_id", def.ID))
	return &def, nil
}

// Update накладывает частичное обновление на текущую политику.
// Перезаписываются только переданные поля.
func (s *PolicyService) Update(ctx context.Context, u domain.PolicyUpdate) (*domain.Policy, error) {
	current, err := s.store.CurrentPolicy(ctx)
	if err != nil {
		return nil, err
	}

	updated := current.Apply(u)
	if err := s.store.UpdatePolicy(ctx, &updated); err != nil {
		return nil, err
	}

	s.notifier.PolicyUpdated(ctx)
	s.logger.Info("policy updated", zap.String("policy_id", updated.ID))
	return &updated, nil
}
