package cart

import "time"

// Item is a product in a user's cart.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	Price       int64     `json:"price"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
