package outbox

import (
	"time"
)

const (
	ContentTypeJSON   = "application/json"
	DefaultMaxRetries = 10
)

// OutboxMessage is an event stored in the same transaction as the change
// that produced it and published to the broker afterwards.
// RoutingKey doubles as the Kafka topic when the Kafka publisher is used.
type OutboxMessage struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	MessageKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
