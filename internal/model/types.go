// Package model defines domain types used by the service.
package model

import "time"

// Product is a catalog item as returned to clients.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	InStock     bool     `json:"in_stock"`
	Image       *string  `json:"image,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

// OrderItem is a single order line. Price is supplied by the client.
type OrderItem struct {
	Product  string  `json:"product"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is a customer submission before pricing.
type Order struct {
	Items    []OrderItem `json:"items"`
	Shipping *float64    `json:"shipping,omitempty"`
}

// PricedOrder is an Order enriched with server-computed amounts,
// each rounded to two fractional digits.
type PricedOrder struct {
	Items    []OrderItem
	Subtotal float64
	Shipping float64
	Total    float64
}

// Receipt is returned to the client once an order is persisted.
type Receipt struct {
	ID    string  `json:"id"`
	Total float64 `json:"total"`
}

// OrderPlaced is emitted after an order has been persisted.
type OrderPlaced struct {
	OrderID   string    `json:"order_id"`
	Subtotal  float64   `json:"subtotal"`
	Shipping  float64   `json:"shipping"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"item_count"`
	PlacedAt  time.Time `json:"placed_at"`
	Sequence  uint64    `json:"sequence"`
}
