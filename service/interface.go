package service

import (
	"context"

	"storefront/checkout"
	"storefront/model"
)

// ServiceInterface is what the view layer needs from the storefront state.
type ServiceInterface interface {
	FetchProducts(ctx context.Context) error
	FetchRandomProduct(ctx context.Context)
	FetchProductCategories(ctx context.Context)
	FetchProductByID(ctx context.Context, id int) (model.Product, error)

	AddToCart(ctx context.Context, product model.Product, quantity int) error
	RemoveFromCart(ctx context.Context, productID int)
	UpdateCartItemQuantity(ctx context.Context, productID, quantity int)
	ClearCart(ctx context.Context)
	Checkout(ctx context.Context) (model.Order, error)

	AddNotification(message string, severity model.Severity) model.Notification
	RemoveNotification(id string)

	Products() []model.Product
	RandomProduct() (model.Product, bool)
	Categories() []model.Category
	CurrentProduct() (model.Product, bool)
	Cart() []model.CartItem
	TotalItems() int
	Quote() checkout.Summary
	Notifications() []model.Notification
	Loading() bool
	Snapshot() Snapshot
}

var _ ServiceInterface = (*Service)(nil)
