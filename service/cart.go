package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"storefront/checkout"
	"storefront/model"
	"storefront/store"
)

// AddToCart adds quantity units of product. A product already in the cart
// has its quantity increased; otherwise a new line is appended. Either way
// a success notification is queued.
func (s *Service) AddToCart(ctx context.Context, product model.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	existed := false
	s.mutateCart(ctx, "add", func() {
		if i := s.indexLocked(product.ID); i >= 0 {
			s.cart[i].Quantity += quantity
			existed = true
			return
		}
		s.cart = append(s.cart, model.CartItem{Product: product, Quantity: quantity})
	})

	if existed {
		s.AddNotification(fmt.Sprintf("Updated the quantity of %q in the cart", product.Title), model.SeveritySuccess)
	} else {
		s.AddNotification(fmt.Sprintf("Added %q to the cart", product.Title), model.SeveritySuccess)
	}
	return nil
}

// RemoveFromCart deletes the line for productID, if any.
func (s *Service) RemoveFromCart(ctx context.Context, productID int) {
	s.mutateCart(ctx, "remove", func() {
		s.cart = slices.DeleteFunc(s.cart, func(it model.CartItem) bool { return it.ID == productID })
	})
}

// UpdateCartItemQuantity sets (not adds to) the quantity of a line.
// Quantities <= 0 remove the line. Unknown products are ignored.
func (s *Service) UpdateCartItemQuantity(ctx context.Context, productID, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}
	s.mutateCart(ctx, "update", func() {
		if i := s.indexLocked(productID); i >= 0 {
			s.cart[i].Quantity = quantity
		}
	})
}

func (s *Service) ClearCart(ctx context.Context) {
	s.mutateCart(ctx, "clear", func() {
		s.cart = []model.CartItem{}
	})
}

func (s *Service) Cart() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// TotalItems is the sum of quantities across all lines.
func (s *Service) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.cart)
}

// Quote prices the current cart.
func (s *Service) Quote() checkout.Summary {
	return checkout.Summarize(s.Cart(), s.taxRate)
}

func totalItems(items []model.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func (s *Service) indexLocked(productID int) int {
	return slices.IndexFunc(s.cart, func(it model.CartItem) bool { return it.ID == productID })
}

// mutateCart applies fn under the state lock and then writes the whole
// cart to the persistent store. A failed write is logged; the in-memory
// cart stays authoritative.
func (s *Service) mutateCart(ctx context.Context, op string, fn func()) {
	s.mu.Lock()
	fn()
	items := append([]model.CartItem{}, s.cart...)
	total := totalItems(s.cart)
	s.syncMu.Lock()
	s.mu.Unlock()
	defer s.syncMu.Unlock()

	s.metrics.CartMutated(op, total)

	data, err := json.Marshal(items)
	if err != nil {
		s.metrics.CartSyncFailed()
		s.log.Error("error encoding cart", zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, store.KeyCart, string(data)); err != nil {
		s.metrics.CartSyncFailed()
		s.log.Error("error saving cart", zap.String("op", op), zap.Error(err))
	}
}
