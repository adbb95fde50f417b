// Package recent keeps the "recently viewed" product list. It reads and
// writes the persistent store directly; the cart service never touches
// this key.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/model"
	"storefront/store"
)

const DefaultLimit = 5

type List struct {
	// serializes Record's read-modify-write within the process
	mu    sync.Mutex
	store store.Store
	limit int
	log   *zap.Logger
}

func New(st store.Store, limit int, log *zap.Logger) *List {
	if limit < 1 {
		limit = DefaultLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &List{store: st, limit: limit, log: log}
}

// Products returns the list, most recent first. Missing or malformed
// stored data reads as an empty list.
func (l *List) Products(ctx context.Context) ([]model.Product, error) {
	raw, err := l.store.Get(ctx, store.KeyRecentlyViewed)
	if errors.Is(err, store.ErrNotFound) {
		return []model.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recently viewed: %w", err)
	}
	var out []model.Product
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		l.log.Warn("discarding malformed recently viewed list", zap.Error(err))
		return []model.Product{}, nil
	}
	if out == nil {
		out = []model.Product{}
	}
	return out, nil
}

// Record moves p to the front of the list, dropping any older entry with
// the same id and anything past the limit.
func (l *List) Record(ctx context.Context, p model.Product) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.Products(ctx)
	if err != nil {
		return err
	}
	next := make([]model.Product, 0, l.limit)
	next = append(next, p)
	for _, existing := range current {
		if len(next) == l.limit {
			break
		}
		if existing.ID != p.ID {
			next = append(next, existing)
		}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, store.KeyRecentlyViewed, string(data)); err != nil {
		return fmt.Errorf("writing recently viewed: %w", err)
	}
	return nil
}
