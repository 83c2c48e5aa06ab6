package models

import "github.com/shopspring/decimal"

// CartLineItem is one product entry in the shopping cart. The full list is
// serialized as JSON under a single store key per user; an item is removed
// from the list instead of ever being stored with quantity zero.
type CartLineItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}
