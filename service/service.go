// Package service is the storefront state container: one Service per
// application session holds the catalog cache, the cart and the
// notification queue, and mirrors the cart to the persistent store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/catalog"
	"storefront/checkout"
	"storefront/metrics"
	"storefront/model"
	"storefront/store"
)

const (
	DefaultNotificationTTL = 3 * time.Second
	DefaultRandomIDMax     = 20
)

type Service struct {
	catalog catalog.Client
	store   store.Store
	log     *zap.Logger
	metrics *metrics.Metrics

	notificationTTL time.Duration
	afterFunc       func(d time.Duration, f func())
	intN            func(n int) int
	now             func() time.Time
	newID           func() string
	randomIDMax     int
	taxRate         decimal.Decimal
	processingDelay time.Duration
	dedupe          bool
	flight          singleflight.Group

	mu            sync.Mutex
	products      []model.Product
	randomProduct *model.Product
	categories    []model.Category
	current       *model.Product
	cart          []model.CartItem
	notifications []model.Notification
	inFlight      int

	// held from the end of a cart mutation until its store write finishes,
	// so writes land in mutation order
	syncMu sync.Mutex
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithNotificationTTL(d time.Duration) Option {
	return func(s *Service) { s.notificationTTL = d }
}

// WithAfterFunc replaces time.AfterFunc for notification expiry.
func WithAfterFunc(fn func(d time.Duration, f func())) Option {
	return func(s *Service) { s.afterFunc = fn }
}

// WithRand replaces the random source; intN must return a value in [0, n).
func WithRand(intN func(n int) int) Option { return func(s *Service) { s.intN = intN } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// WithRandomIDMax sets the upper bound of the id range FetchRandomProduct draws from.
func WithRandomIDMax(n int) Option { return func(s *Service) { s.randomIDMax = n } }

func WithTaxRate(rate decimal.Decimal) Option { return func(s *Service) { s.taxRate = rate } }

// WithProcessingDelay sets how long Checkout simulates payment processing.
func WithProcessingDelay(d time.Duration) Option {
	return func(s *Service) { s.processingDelay = d }
}

// WithFetchDedup collapses concurrent FetchProducts calls into a single
// catalog request whose result every caller shares.
func WithFetchDedup(on bool) Option { return func(s *Service) { s.dedupe = on } }

// NewService builds the session state and seeds the cart from the
// persistent store. Unreadable or malformed stored carts are logged and
// replaced by an empty cart.
func NewService(ctx context.Context, cl catalog.Client, st store.Store, opts ...Option) *Service {
	s := &Service{
		catalog:         cl,
		store:           st,
		log:             zap.NewNop(),
		notificationTTL: DefaultNotificationTTL,
		afterFunc:       func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		intN:            rand.IntN,
		now:             time.Now,
		newID:           newNotificationID,
		randomIDMax:     DefaultRandomIDMax,
		taxRate:         checkout.DefaultTaxRate,
		products:        []model.Product{},
		categories:      []model.Category{},
		cart:            []model.CartItem{},
		notifications:   []model.Notification{},
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := s.loadCart(ctx)
	if err != nil {
		var corrupt *CorruptStateError
		if errors.As(err, &corrupt) {
			s.log.Error("stored cart is corrupt, starting empty", zap.Error(err))
		} else {
			s.log.Error("could not read stored cart, starting empty", zap.Error(err))
		}
		items = nil
	}
	if items != nil {
		s.cart = items
	}
	return s
}

func newNotificationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *Service) loadCart(ctx context.Context) ([]model.CartItem, error) {
	raw, err := s.store.Get(ctx, store.KeyCart)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &CorruptStateError{Key: store.KeyCart, Err: err}
	}
	out := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			s.log.Warn("dropping stored cart line with non-positive quantity",
				zap.Int("product_id", it.ID), zap.Int("quantity", it.Quantity))
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// beginLoading marks a fetch in flight; call the returned func when done.
func (s *Service) beginLoading() func() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}
}

// FetchProducts replaces the product cache with the full catalog. With
// overlapping calls the last response to arrive wins, unless fetch
// de-duplication is on.
func (s *Service) FetchProducts(ctx context.Context) error {
	defer s.beginLoading()()

	products, err := s.fetchCatalog(ctx)
	if err != nil {
		s.log.Error("error fetching products", zap.Error(err))
		return fmt.Errorf("fetching products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}

func (s *Service) fetchCatalog(ctx context.Context) ([]model.Product, error) {
	if !s.dedupe {
		return s.catalog.Products(ctx)
	}
	// the shared request outlives any one caller; each caller still stops
	// waiting when its own ctx is done
	ch := s.flight.DoChan("products", func() (any, error) {
		return s.catalog.Products(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Product), nil
	}
}

// FetchRandomProduct fills the featured slot. It tries a random id first,
// then a random entry of the cached catalog, then of a fresh catalog
// fetch. If every path fails the slot keeps its previous value.
func (s *Service) FetchRandomProduct(ctx context.Context) {
	defer s.beginLoading()()

	id := s.intN(s.randomIDMax) + 1
	p, err := s.catalog.Product(ctx, id)
	if err == nil {
		s.setRandom(p)
		return
	}
	s.log.Warn("random product lookup failed, falling back to the catalog",
		zap.Int("product_id", id), zap.Error(err))

	candidates := s.Products()
	if len(candidates) == 0 {
		candidates, err = s.catalog.Products(ctx)
		if err != nil {
			s.log.Error("error fetching random product", zap.Error(err))
			return
		}
	}
	if len(candidates) == 0 {
		return
	}
	s.setRandom(candidates[s.intN(len(candidates))])
}

func (s *Service) setRandom(p model.Product) {
	s.mu.Lock()
	s.randomProduct = &p
	s.mu.Unlock()
}

// FetchProductCategories rebuilds the category list with per-category
// product counts. Each step is best effort: a failed category fetch yields
// no categories, a failed product fetch yields zero counts.
func (s *Service) FetchProductCategories(ctx context.Context) {
	defer s.beginLoading()()

	categories := []model.Category{}
	names, err := s.catalog.Categories(ctx)
	if err != nil {
		s.log.Error("error fetching categories", zap.Error(err))
	}
	for _, name := range names {
		categories = append(categories, model.Category{
			ID:   name,
			Name: name,
			// this is the category listing endpoint, not an image
			Image: s.catalog.BaseURL() + "/products/category/" + name,
		})
	}

	products := s.Products()
	if len(products) == 0 {
		products, err = s.catalog.Products(ctx)
		if err != nil {
			s.log.Error("error fetching products for category count", zap.Error(err))
		}
	}

	counts := make(map[string]int, len(categories))
	for _, p := range products {
		counts[p.Category]++
	}
	for i := range categories {
		categories[i].Count = counts[categories[i].ID]
	}

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
}

// FetchProductByID loads one product into the current product slot and
// returns it. Callers should use the returned product: a concurrent lookup
// may replace the slot before they read it.
func (s *Service) FetchProductByID(ctx context.Context, id int) (model.Product, error) {
	defer s.beginLoading()()

	p, err := s.catalog.Product(ctx, id)
	if err != nil {
		s.log.Error("error fetching product", zap.Int("product_id", id), zap.Error(err))
		return model.Product{}, fmt.Errorf("fetching product %d: %w", id, err)
	}

	s.mu.Lock()
	current := p
	s.current = &current
	s.mu.Unlock()
	return p, nil
}

func (s *Service) Products() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

func (s *Service) RandomProduct() (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.randomProduct == nil {
		return model.Product{}, false
	}
	return *s.randomProduct, true
}

func (s *Service) Categories() []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

func (s *Service) CurrentProduct() (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Product{}, false
	}
	return *s.current, true
}

// Loading reports whether any fetch is in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Snapshot is every piece of session state at one instant.
type Snapshot struct {
	Products       []model.Product      `json:"products"`
	RandomProduct  *model.Product       `json:"random_product,omitempty"`
	Categories     []model.Category     `json:"categories"`
	CurrentProduct *model.Product       `json:"current_product,omitempty"`
	Cart           []model.CartItem     `json:"cart"`
	TotalItems     int                  `json:"total_items"`
	Notifications  []model.Notification `json:"notifications"`
	Loading        bool                 `json:"loading"`
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Products:      slices.Clone(s.products),
		Categories:    slices.Clone(s.categories),
		Cart:          slices.Clone(s.cart),
		TotalItems:    totalItems(s.cart),
		Notifications: slices.Clone(s.notifications),
		Loading:       s.inFlight > 0,
	}
	if s.randomProduct != nil {
		p := *s.randomProduct
		snap.RandomProduct = &p
	}
	if s.current != nil {
		p := *s.current
		snap.CurrentProduct = &p
	}
	return snap
}
