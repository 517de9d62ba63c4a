package notify

/*
Fire-and-forget сигналы о смене статуса заявок. Консоль/фронтенд подписаны
на канал Redis и перерисовывают timeline без поллинга. Недоставка сигнала
никогда не валит основную операцию — подписчик дочитает состояние из БД.
*/

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/infra"
)

// Notifier — трансляция событий жизненного цикла наружу.
type Notifier interface {
	ActivityChanged(ctx context.Context, activityID string, status domain.ActivityStatus)
	PolicyUpdated(ctx context.Context)
}

// RedisNotifier публикует сигналы в каналы Redis (формат "id:status").
type RedisNotifier struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisNotifier(rdb *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		rdb:    rdb,
		logger: logger.Named("notifier"),
	}
}

func (n *RedisNotifier) ActivityChanged(ctx context.Context, activityID string, status domain.ActivityStatus) {
	payload := fmt.Sprintf("%s:%s", activityID, status)
	if err := n.rdb.Publish(ctx, infra.RedisChanActivityEvents, payload).Err(); err != nil {
		n.logger.Warn("activity signal delivery failed",
			zap.String("activity_id", activityID),
			zap.Error(err))
	}
}

func (n *RedisNotifier) PolicyUpdated(ctx context.Context) {
	// Сигнал простой: подписчик сам перечитает текущую политику
	if err := n.rdb.Publish(ctx, infra.RedisChanPolicyUpdate, "refresh").Err(); err != nil {
		n.logger.Warn("policy signal delivery failed", zap.Error(err))
	}
}

// Noop — заглушка для тестов и single-process режима.
type Noop struct{}

func (Noop) ActivityChanged(context.Context, string, domain.ActivityStatus) {}
func (Noop) PolicyUpdated(context.Context)                                  {}
