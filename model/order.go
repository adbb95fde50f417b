package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the receipt of a simulated checkout.
type Order struct {
	Number    string          `json:"number"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
