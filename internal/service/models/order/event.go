package order

import "time"

// CreatedEventType is the routing key of the event emitted for every placed order.
const CreatedEventType = "order.created"

// CreatedEvent is the payload published after an order is committed.
type CreatedEvent struct {
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	TotalAmount int64              `json:"totalAmount"`
	Items       []CreatedEventItem `json:"items"`
	CreatedAt   time.Time          `json:"createdAt"`
}

type CreatedEventItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
}

// NewCreatedEvent builds the event for a persisted order.
func NewCreatedEvent(o *Order) CreatedEvent {
	items := make([]CreatedEventItem, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		items = append(items, CreatedEventItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return CreatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Items:       items,
		CreatedAt:   o.CreatedAt,
	}
}
