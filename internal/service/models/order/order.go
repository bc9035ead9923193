package order

import (
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
)

// Order represents an order placed by a user.
type Order struct {
	ID           string                `json:"id"`
	UserID       string                `json:"userId"`
	Status       Status                `json:"status"`
	TotalAmount  int64                 `json:"totalAmount"`
	ReturnReason *string               `json:"returnReason,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	OrderItems   []orderitem.OrderItem `json:"orderItems"`
}

// Line is a single (product, quantity) pair of an order request.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// ClientOrder is an order as seen by a client that sells at least one of its products.
type ClientOrder struct {
	Order
	BuyerName string `json:"buyerName"`
	Paid      bool   `json:"paid"`
}
