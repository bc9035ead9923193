package ipaymentrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/payment"
)

type IPaymentRepository interface {
	Insert(ctx context.Context, p payment.Payment) error
	Get(ctx context.Context, id string) (*payment.Payment, error)
	QueryByUser(ctx context.Context, userID string) ([]payment.Payment, error)
	QueryByClient(ctx context.Context, clientID string) ([]payment.ClientPayment, error)
	UpdateStatus(ctx context.Context, id string, status payment.Status) error
}
