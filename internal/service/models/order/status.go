package order

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending     Status = "pending"
	StatusPacked      Status = "packed"
	StatusShipped     Status = "shipped"
	StatusDelivered   Status = "delivered"
	StatusCancel      Status = "cancel"
	StatusReturn      Status = "return"
	StatusReplacement Status = "replacement"
)

var statuses = map[Status]struct{}{
	StatusPending:     {},
	StatusPacked:      {},
	StatusShipped:     {},
	StatusDelivered:   {},
	StatusCancel:      {},
	StatusReturn:      {},
	StatusReplacement: {},
}

// ParseStatus parses a case-insensitive status name.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statuses[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}

	return st, nil
}

func (s Status) String() string {
	return string(s)
}
