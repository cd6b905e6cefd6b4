package rabbitmq

// Exchange — имя exchange для событий движка прогресса.
const Exchange = "progression"

// Ключи маршрутизации событий движка прогресса.
const (
	RouteLevelUp             = "level_up"
	RouteSubscriptionStatus  = "subscription_status"
	RouteSubscriptionExpired = "subscription_expired"
)

// QueueConfig описывает очередь и ключ маршрутизации для неё.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetProgressionQueues возвращает очереди событий движка прогресса.
func GetProgressionQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "progression.level_up", RoutingKey: RouteLevelUp},
		{QueueName: "progression.subscription_status", RoutingKey: RouteSubscriptionStatus},
		{QueueName: "progression.subscription_expired", RoutingKey: RouteSubscriptionExpired},
	}
}
