package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/product"
)

// IProductRepository is the product store, including the stock ledger used by order placement.
type IProductRepository interface {
	// LockForOrder locks the given product rows without waiting, skipping rows
	// held by other transactions, and returns the locked rows ordered by id.
	// A missing id in the result means the product does not exist or is locked.
	LockForOrder(ctx context.Context, ids []string) ([]product.StockSnapshot, error)

	// DecrementStock subtracts qty from the product stock, refusing to go below zero.
	DecrementStock(ctx context.Context, id string, qty int64) error

	Insert(ctx context.Context, p product.Product) error
	Get(ctx context.Context, id string) (*product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}
