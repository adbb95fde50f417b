// Package checkout prices a cart for the simulated payment flow.
package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/model"
)

// DefaultTaxRate is the flat sales tax applied to the subtotal.
var DefaultTaxRate = decimal.RequireFromString("0.19")

// Summary is the priced view of a cart.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize computes subtotal, tax and total. Amounts are not rounded;
// presentation rounds to cents.
func Summarize(items []model.CartItem, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	tax := subtotal.Mul(taxRate)
	return Summary{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// OrderNumber formats ORD-YYYYMMDD-NNNN from the order date and a number in [0, 9999].
func OrderNumber(at time.Time, n int) string {
	return fmt.Sprintf("ORD-%s-%04d", at.Format("20060102"), n%10000)
}
