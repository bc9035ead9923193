package paymentsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/order/postgres"
	paymentrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/payment/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/payment"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type paymentRepository interface {
	Insert(ctx context.Context, p payment.Payment) error
	QueryByUser(ctx context.Context, userID string) ([]payment.Payment, error)
	QueryByClient(ctx context.Context, clientID string) ([]payment.ClientPayment, error)
	UpdateStatus(ctx context.Context, id string, status payment.Status) error
}

type orderGetter interface {
	Get(ctx context.Context, id string) (*order.Order, error)
}

// PaymentService records payments of placed orders.
type PaymentService struct {
	payments paymentRepository
	orders   orderGetter
	tracer   trace.Tracer

	now   func() time.Time
	newID func() string
}

type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{
		tracer: otel.Tracer("paymentsvc"),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.payments == nil || s.orders == nil {
		panic("paymentsvc: repositories are required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *PaymentService) {
		s.payments = paymentrepo.NewPostgresPaymentRepository(pgClient.Pool())
		s.orders = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
	}
}

func withRepositories(payments paymentRepository, orders orderGetter) option {
	return func(s *PaymentService) {
		s.payments = payments
		s.orders = orders
	}
}

// CreatePaymentInput is a payment request of the order owner.
type CreatePaymentInput struct {
	OrderID         string
	PaymentMethodID *string
	Status          string
	// Amount defaults to the order total when zero.
	Amount int64
}

// CreatePayment records the payment of an order placed by the user.
// An order has at most one payment.
func (s *PaymentService) CreatePayment(
	ctx context.Context,
	userID string,
	in CreatePaymentInput,
) (*payment.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CreatePayment")
	defer span.End()

	status := payment.StatusPending
	if in.Status != "" {
		st, err := payment.ParseStatus(in.Status)
		if err != nil {
			return nil, apperr.NewValidationError("status", err.Error())
		}
		status = st
	}

	if in.Amount < 0 {
		return nil, apperr.NewValidationError("amount", "must not be negative")
	}

	o, err := s.orders.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", in.OrderID, apperr.ErrForbidden)
	}

	amount := in.Amount
	if amount == 0 {
		amount = o.TotalAmount
	}

	now := s.now().UTC()
	p := payment.Payment{
		ID:              s.newID(),
		OrderID:         o.ID,
		PaymentMethodID: in.PaymentMethodID,
		Status:          status,
		Amount:          amount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.payments.Insert(ctx, p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *PaymentService) GetPaymentsByUser(ctx context.Context, userID string) ([]payment.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.GetPaymentsByUser")
	defer span.End()

	return s.payments.QueryByUser(ctx, userID)
}

// GetPaymentsByClient returns payments of orders containing the client's products.
func (s *PaymentService) GetPaymentsByClient(ctx context.Context, clientID string) ([]payment.ClientPayment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.GetPaymentsByClient")
	defer span.End()

	return s.payments.QueryByClient(ctx, clientID)
}

func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	st, err := payment.ParseStatus(status)
	if err != nil {
		return apperr.NewValidationError("status", err.Error())
	}

	return s.payments.UpdateStatus(ctx, paymentID, st)
}
