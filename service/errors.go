package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantity is returned by AddToCart for quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	// ErrEmptyCart is returned by Checkout when there is nothing to buy.
	ErrEmptyCart = errors.New("cart empty")
)

// CorruptStateError reports persisted state that could not be decoded.
type CorruptStateError struct {
	Key string
	Err error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state under key %q: %v", e.Key, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }
