package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) error
	Get(ctx context.Context, id string) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	QueryByClient(ctx context.Context, filter *order.QueryClientOrdersModel) ([]order.ClientOrder, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) error
	UpdateReturnReason(ctx context.Context, id, reason string) error
}
