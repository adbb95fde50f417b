package browse

import (
	"github.com/shopspring/decimal"

	"storefront/model"
)

const (
	minDiscountPercent = 10
	maxDiscountPercent = 40
)

var hundred = decimal.NewFromInt(100)

// Offers marks every other product (even positions) as on sale with a
// discount in [10, 40] percent. intN returns a value in [0, n). The sale
// price is rounded to whole currency units.
func Offers(products []model.Product, intN func(n int) int) []model.DiscountedProduct {
	out := make([]model.DiscountedProduct, 0, (len(products)+1)/2)
	for i := 0; i < len(products); i += 2 {
		p := products[i]
		pct := intN(maxDiscountPercent-minDiscountPercent+1) + minDiscountPercent
		sale := p.Price.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(pct)).Div(hundred))).Round(0)

		d := model.DiscountedProduct{
			Product:         p,
			OriginalPrice:   p.Price,
			DiscountPercent: pct,
		}
		d.Price = sale
		out = append(out, d)
	}
	return out
}
