package user

import "time"

// Kind distinguishes buyers from clients (sellers). Both authenticate the same way.
type Kind string

const (
	KindUser   Kind = "user"
	KindClient Kind = "client"
)

// Account is a user or client identity stored locally.
type Account struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   string
	Kind Kind
}

// Buyer is a user who ordered products of a client, with the ids of those orders.
type Buyer struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	OrderIDs []string `json:"orderIds"`
}
