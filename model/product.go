package model

import "github.com/shopspring/decimal"

// Product is a catalog entry as served by the remote catalog.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating is the average review score (0-5) and number of reviews.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Category groups products sharing the same category identifier.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Count int    `json:"count"`
}

// DiscountedProduct is a Product shown on the offers page. The embedded
// Product carries the sale price; OriginalPrice is what the catalog lists.
type DiscountedProduct struct {
	Product
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountPercent int             `json:"discountPercent"`
}
