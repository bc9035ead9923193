package review

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating of a product.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the optional fields of a review update.
type Patch struct {
	Rating  *int
	Comment *string
}
