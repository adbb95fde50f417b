package model

import "github.com/shopspring/decimal"

// CartItem is a product line in the cart. Quantity is always >= 1.
// It serializes flat: the product fields plus "quantity".
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price * quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
