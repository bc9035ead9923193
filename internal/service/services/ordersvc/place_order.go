package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/metrics"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PlaceOrder atomically checks and decrements stock for every requested
// product and persists the order with its items and an order.created event.
//
// Product rows are locked in ascending id order with SKIP LOCKED, so a product
// held by a concurrent order makes this request fail fast with
// ErrProductsUnavailable instead of waiting. Store aborts surface as
// ErrTransactionConflict and are retried with exponential backoff.
// Quantities of repeated product ids are summed before the stock check.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, lines []order.Line) (*order.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()

	placed, err := s.placeOrder(ctx, userID, lines)

	outcome := outcomeOf(err)
	s.metrics.ObservePlacement(outcome, time.Since(start))
	span.SetAttributes(attribute.String("order.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID),
		attribute.Int64("order.total_amount", placed.TotalAmount),
	)

	return placed, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID string, lines []order.Line) (*order.Order, error) {
	demand, err := validateLines(userID, lines)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var (
		placed  *order.Order
		attempt int
	)

	err = retry.Do(ctx, s.conflictBackoff(), func(ctx context.Context) error {
		attempt++

		o, err := s.placeOnce(ctx, userID, lines, ids, demand)
		if err != nil {
			if errors.Is(err, apperr.ErrTransactionConflict) {
				s.metrics.IncConflict()
				slog.WarnContext(ctx, "Order transaction aborted by store",
					"user_id", userID,
					"attempt", attempt,
					"error", err,
				)

				return retry.RetryableError(err)
			}

			return err
		}

		placed = o

		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, apperr.ErrTransactionConflict) {
			err = fmt.Errorf("%w: %w", apperr.ErrTransactionConflict, err)
		}

		return nil, err
	}

	slog.InfoContext(ctx, "Order placed",
		"order_id", placed.ID,
		"user_id", userID,
		"total_amount", placed.TotalAmount,
		"items", len(placed.OrderItems),
		"attempts", attempt,
	)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, ids...); err != nil {
			slog.WarnContext(ctx, "Failed to invalidate catalog cache", "order_id", placed.ID, "error", err)
		}
	}

	return placed, nil
}

// conflictJitterPercent is the +/- spread applied to each retry delay.
const conflictJitterPercent = 20

// conflictBackoff spaces out retries of aborted transactions. The delays are
// jittered so that buyers aborted together do not retry together. A
// non-positive base delay retries immediately.
func (s *OrderService) conflictBackoff() retry.Backoff {
	var next retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	if s.baseDelay > 0 {
		next = retry.WithJitterPercent(conflictJitterPercent, retry.NewExponential(s.baseDelay))
	}

	return retry.WithMaxRetries(s.maxRetries, next)
}

// placeOnce runs a single placement attempt in its own transaction.
func (s *OrderService) placeOnce(
	ctx context.Context,
	userID string,
	lines []order.Line,
	ids []string,
	demand map[string]int64,
) (_ *order.Order, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, classify("begin transaction", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := work.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to rollback order transaction", "error", rbErr)
		}
	}()

	locked, err := work.ProductRepository().LockForOrder(ctx, ids)
	if err != nil {
		return nil, classify("lock products", err)
	}

	snapshots := make(map[string]product.StockSnapshot, len(locked))
	for _, snap := range locked {
		snapshots[snap.ID] = snap
	}

	for _, id := range ids {
		if _, ok := snapshots[id]; !ok {
			return nil, fmt.Errorf("%w: locked %d of %d products, first missing %s",
				apperr.ErrProductsUnavailable, len(locked), len(ids), id)
		}
	}

	for _, id := range ids {
		if snap := snapshots[id]; demand[id] > snap.Stock {
			return nil, &apperr.InsufficientStockError{
				ProductID: id,
				Requested: demand[id],
				Available: snap.Stock,
			}
		}
	}

	now := s.now().UTC()
	o := order.Order{
		ID:         s.newID(),
		UserID:     userID,
		Status:     order.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		OrderItems: make([]orderitem.OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		price := snapshots[line.ProductID].Price

		lineTotal, ok := mulInt64(price, line.Quantity)
		if ok {
			o.TotalAmount, ok = addInt64(o.TotalAmount, lineTotal)
		}
		if !ok {
			return nil, apperr.NewValidationError("items", "order total overflows")
		}

		o.OrderItems = append(o.OrderItems, orderitem.OrderItem{
			ID:        s.newID(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
			CreatedAt: now,
		})
	}

	for _, id := range ids {
		if err := work.ProductRepository().DecrementStock(ctx, id, demand[id]); err != nil {
			return nil, classify("decrement stock", err)
		}
	}

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return nil, classify("insert order", err)
	}

	if err := work.OrderItemRepository().BulkInsert(ctx, o.OrderItems); err != nil {
		return nil, classify("insert order items", err)
	}

	msg, err := s.createdMessage(&o)
	if err != nil {
		return nil, err
	}

	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return nil, classify("insert outbox message", err)
	}

	if err := work.Commit(ctx); err != nil {
		return nil, classify("commit", err)
	}

	return &o, nil
}

func (s *OrderService) createdMessage(o *order.Order) (outbox.OutboxMessage, error) {
	payload, err := json.Marshal(order.NewCreatedEvent(o))
	if err != nil {
		return outbox.OutboxMessage{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return outbox.OutboxMessage{
		ExchangeName: s.exchange,
		RoutingKey:   order.CreatedEventType,
		MessageKey:   o.ID,
		Payload:      payload,
		ContentType:  outbox.ContentTypeJSON,
		MaxRetries:   outbox.DefaultMaxRetries,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.CreatedAt,
		NextRetryAt:  o.CreatedAt,
	}, nil
}

// validateLines checks the request shape and returns the total demand per product.
func validateLines(userID string, lines []order.Line) (map[string]int64, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.NewValidationError("userId", "is required")
	}

	if len(lines) == 0 {
		return nil, apperr.NewValidationError("items", "must not be empty")
	}

	demand := make(map[string]int64, len(lines))
	for i, line := range lines {
		if line.ProductID == "" {
			return nil, apperr.NewValidationError(fmt.Sprintf("items[%d].productId", i), "is required")
		}

		if line.Quantity <= 0 {
			return nil, apperr.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}

		sum, ok := addInt64(demand[line.ProductID], line.Quantity)
		if !ok {
			return nil, apperr.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "is too large")
		}
		demand[line.ProductID] = sum
	}

	return demand, nil
}

// classify maps store aborts and timeouts to ErrTransactionConflict.
func classify(op string, err error) error {
	if postgres.IsTransactionAbort(err) {
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrTransactionConflict, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func outcomeOf(err error) string {
	var stockErr *apperr.InsufficientStockError

	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apperr.ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, apperr.ErrProductsUnavailable):
		return metrics.OutcomeUnavailable
	case errors.As(err, &stockErr), errors.Is(err, apperr.ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	case errors.Is(err, apperr.ErrTransactionConflict):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}

// Operands are non-negative: prices are checked by the schema and quantities by validateLines.
func mulInt64(a, b int64) (int64, bool) {
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}

	return a * b, true
}

func addInt64(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}

	return a + b, true
}
