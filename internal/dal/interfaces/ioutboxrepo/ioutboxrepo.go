package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
)

// IOutboxRepository stores events until the broker has accepted them.
type IOutboxRepository interface {
	// Insert adds a message. Call it inside the transaction that produced the event.
	Insert(ctx context.Context, msg outbox.OutboxMessage) error

	// GetPending returns up to limit messages due at now with retries left, earliest due first.
	GetPending(ctx context.Context, now time.Time, limit int) ([]outbox.OutboxMessage, error)

	// Delete removes a delivered message.
	Delete(ctx context.Context, id int64) error

	// MarkFailed records a failed delivery and when to try again.
	MarkFailed(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
}
