package payment

import (
	"fmt"
	"strings"
	"time"
)

// Payment records the payment of a single order.
type Payment struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"orderId"`
	PaymentMethodID *string   `json:"paymentMethodId,omitempty"`
	Status          Status    `json:"status"`
	Amount          int64     `json:"amount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ClientPayment is a payment visible to a client, with the paying user.
type ClientPayment struct {
	Payment
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// ParseStatus parses a case-insensitive payment status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return st, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", s)
	}
}
