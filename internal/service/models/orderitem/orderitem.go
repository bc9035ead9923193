package orderitem

import (
	"time"
)

// OrderItem represents an item within an order.
// Price is the unit price captured when the product row was locked.
type OrderItem struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	OrderIds   []string `json:"orderIds,omitempty"`
	ProductIds []string `json:"productIds,omitempty"`
}
