package ordersvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/dal/uow"
	"github.com/corray333/backend-labs/shop/internal/metrics"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// OrderService is a service for managing orders.
type OrderService struct {
	newUOW      func() unitOfWork
	invalidator catalogInvalidator
	metrics     *metrics.OrderMetrics
	tracer      trace.Tracer

	txTimeout  time.Duration
	maxRetries uint64
	baseDelay  time.Duration
	exchange   string

	now   func() time.Time
	newID func() string
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	ProductRepository() iproductrepo.IProductRepository
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// catalogInvalidator drops cached catalog entries whose stock changed.
type catalogInvalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		tracer:     otel.Tracer("ordersvc"),
		txTimeout:  durationOr(viper.GetDuration("orders.tx_timeout"), 5*time.Second),
		maxRetries: 3,
		baseDelay:  durationOr(viper.GetDuration("orders.retry.base_delay"), 50*time.Millisecond),
		exchange:   viper.GetString("broker.exchange"),
		now:        time.Now,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	if viper.IsSet("orders.retry.max_retries") {
		s.maxRetries = uint64(viper.GetUint("orders.retry.max_retries"))
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: postgres client or unit of work factory is required")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork { return uow.NewUnitOfWork(pgClient) }
	}
}

// WithCatalogInvalidator sets the cache that is purged after stock changes.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogInvalidator(inv catalogInvalidator) option {
	return func(s *OrderService) {
		s.invalidator = inv
	}
}

// WithMetrics sets the order placement collectors.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.OrderMetrics) option {
	return func(s *OrderService) {
		s.metrics = m
	}
}

// WithRetryPolicy overrides how many times a conflicting transaction is retried
// and the initial backoff delay. A non-positive baseDelay retries without waiting.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRetryPolicy(maxRetries uint64, baseDelay time.Duration) option {
	return func(s *OrderService) {
		s.maxRetries = maxRetries
		s.baseDelay = baseDelay
	}
}

// WithTxTimeout bounds the lifetime of a single placement attempt.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTxTimeout(d time.Duration) option {
	return func(s *OrderService) {
		s.txTimeout = d
	}
}

func withUnitOfWorkFactory(f func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = f
	}
}

// GetOrders returns the orders of a user with their items, newest first.
func (s *OrderService) GetOrders(ctx context.Context, userID string) ([]order.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrders")
	defer span.End()

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{UserIds: []string{userID}})
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, work, orders, func(i int) *order.Order { return &orders[i] }); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrdersByClient returns orders that contain at least one product of the client.
func (s *OrderService) GetOrdersByClient(
	ctx context.Context,
	clientID string,
	page, pageSize int,
) ([]order.ClientOrder, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrdersByClient")
	defer span.End()

	if page < 1 {
		page = 1
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().QueryByClient(ctx, &order.QueryClientOrdersModel{
		ClientID: clientID,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, work, orders, func(i int) *order.Order { return &orders[i].Order }); err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus moves an order to another status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	st, err := order.ParseStatus(status)
	if err != nil {
		return apperr.NewValidationError("status", err.Error())
	}

	return s.newUOW().OrderRepository().UpdateStatus(ctx, orderID, st)
}

// UpdateReturnReason records why the owner of the order wants to return it.
func (s *OrderService) UpdateReturnReason(ctx context.Context, userID, orderID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.NewValidationError("returnReason", "is required")
	}

	repo := s.newUOW().OrderRepository()

	o, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if o.UserID != userID {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrForbidden)
	}

	return repo.UpdateReturnReason(ctx, orderID, reason)
}

func attachItems[T any](ctx context.Context, work unitOfWork, orders []T, at func(int) *order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*order.Order, len(orders))
	query := &orderitem.QueryOrderItemsModel{}
	for i := range orders {
		o := at(i)
		byID[o.ID] = o
		query.OrderIds = append(query.OrderIds, o.ID)
	}

	items, err := work.OrderItemRepository().Query(ctx, query)
	if err != nil {
		return err
	}

	for _, item := range items {
		if o, ok := byID[item.OrderID]; ok {
			o.OrderItems = append(o.OrderItems, item)
		}
	}

	return nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}

	return d
}
