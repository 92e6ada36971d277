package rabbitmq

// NotificationsExchange обменник событий уведомлений.
const NotificationsExchange = "notifications"

// Ключи маршрутизации событий.
const (
	RoutingKeyEmail = "email"
)

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.email", RoutingKey: RoutingKeyEmail},
	}
}
