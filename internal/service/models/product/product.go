package product

import "time"

// Product is a catalog entry owned by a client. Price is in minor currency units.
type Product struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Images      []string  `json:"images"`
	Price       int64     `json:"price"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StockSnapshot is the stock and price of a product row read under an exclusive lock.
type StockSnapshot struct {
	ID    string
	Stock int64
	Price int64
}

// QueryProductsModel represents filter parameters for querying products.
type QueryProductsModel struct {
	Ids         []string `json:"ids,omitempty"`
	ClientIds   []string `json:"clientIds,omitempty"`
	CategoryIds []string `json:"categoryIds,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}
