package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "aurralis"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanActivityEvents — трансляция смен статуса заявок для live-обновлений UI.
	// Формат сообщения: "activity_id:status".
	RedisChanActivityEvents = RedisNamespace + ":activities:events"

	// RedisChanPolicyUpdate — сигнал «политика изменилась», подписчики перечитывают её из БД.
	RedisChanPolicyUpdate = RedisNamespace + ":policy:update"
)
