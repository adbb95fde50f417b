package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/checkout"
	"storefront/model"
)

// Checkout runs the simulated payment: it prices the cart, waits the
// processing delay, issues an order number and empties the cart.
func (s *Service) Checkout(ctx context.Context) (model.Order, error) {
	items := s.Cart()
	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	summary := checkout.Summarize(items, s.taxRate)

	if s.processingDelay > 0 {
		timer := time.NewTimer(s.processingDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return model.Order{}, ctx.Err()
		case <-timer.C:
		}
	}

	now := s.now()
	order := model.Order{
		Number:    checkout.OrderNumber(now, s.intN(10000)),
		Items:     items,
		Subtotal:  summary.Subtotal,
		Tax:       summary.Tax,
		Total:     summary.Total,
		CreatedAt: now,
	}
	s.ClearCart(ctx)

	s.log.Info("order placed",
		zap.String("order", order.Number),
		zap.Int("lines", len(items)),
		zap.String("total", order.Total.StringFixed(2)))
	return order, nil
}
