package outbox

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/sony/gobreaker"
	"github.com/spf13/viper"
)

// Publisher delivers a message to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg outbox.OutboxMessage) error
}

// Worker moves messages from the outbox table to the broker.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	publisher     Publisher
	breaker       *gobreaker.CircuitBreaker
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewWorker creates a new outbox worker.
func NewWorker(outboxRepo ioutboxrepo.IOutboxRepository, publisher Publisher) *Worker {
	pollInterval := viper.GetDuration("outbox.poll_interval")
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	batchSize := viper.GetInt("outbox.batch_size")
	if batchSize <= 0 {
		batchSize = 100
	}

	retryInterval := viper.GetDuration("outbox.retry_interval")
	if retryInterval <= 0 {
		retryInterval = 30 * time.Second
	}

	return &Worker{
		outboxRepo:    outboxRepo,
		publisher:     publisher,
		breaker:       newBreaker(viper.GetString("broker.kind")),
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		retryInterval: retryInterval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "outbox-" + name,
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// Start processes the outbox every poll interval until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// processMessages publishes one batch of due messages.
// An open breaker ends the batch without touching the remaining messages.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPending(ctx, w.now(), w.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.publisher.Publish(ctx, msg)
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "Broker circuit open, postponing outbox batch", "pending", len(messages))

			return
		}

		if err != nil {
			w.reschedule(ctx, msg, err)

			continue
		}

		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)

			continue
		}

		slog.DebugContext(ctx, "Outbox message published", "outbox_id", msg.ID, "routing_key", msg.RoutingKey)
	}
}

// reschedule backs off exponentially: retryInterval, 2x, 4x and so on.
func (w *Worker) reschedule(ctx context.Context, msg outbox.OutboxMessage, cause error) {
	retryCount := msg.RetryCount + 1
	backoff := time.Duration(math.Pow(2, float64(retryCount-1)) * float64(w.retryInterval))
	nextRetryAt := w.now().Add(backoff)

	if retryCount >= msg.MaxRetries {
		slog.ErrorContext(ctx, "Outbox message exhausted its retries",
			"outbox_id", msg.ID,
			"routing_key", msg.RoutingKey,
			"error", cause,
		)
	} else {
		slog.WarnContext(ctx, "Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"retry_count", retryCount,
			"next_retry", nextRetryAt,
			"error", cause,
		)
	}

	if err := w.outboxRepo.MarkFailed(ctx, msg.ID, retryCount, cause.Error(), nextRetryAt); err != nil {
		slog.ErrorContext(ctx, "Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
