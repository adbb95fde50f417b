package store

import "context"

// Keys written to the persistent store.
const (
	// KeyCart holds the full cart line-item collection, written by the service.
	KeyCart = "cart"
	// KeyRecentlyViewed holds the recently viewed product list, written by
	// the product detail view directly.
	KeyRecentlyViewed = "recentlyViewed"
)

// Store is a durable key-value store for serialized session state.
//
// Get returns ErrNotFound when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	Close() error
}
