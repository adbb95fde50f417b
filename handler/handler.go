package handler

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/browse"
	"storefront/catalog"
	"storefront/model"
	"storefront/recent"
	"storefront/service"
)

// Options tunes the listing endpoints.
type Options struct {
	PageSize     int
	SuggestLimit int
	// MaxPrice is the upper bound of the price filter when the request
	// gives none. Zero or negative means no default bound.
	MaxPrice    decimal.Decimal
	MaxBodySize int64
	// OffersRand picks discount percentages; nil uses math/rand/v2.
	OffersRand func(n int) int
}

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc      service.ServiceInterface
	recent   *recent.List
	validate *validator.Validate
	log      *zap.Logger
	opts     Options
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface, rv *recent.List, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PageSize < 1 {
		opts.PageSize = 9
	}
	if opts.SuggestLimit < 1 {
		opts.SuggestLimit = 5
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 1 << 20
	}
	if opts.OffersRand == nil {
		opts.OffersRand = rand.IntN
	}
	return &Handler{svc: s, recent: rv, validate: newValidator(), log: log, opts: opts}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Products
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/refresh", h.RefreshProducts).Methods("POST")
	r.HandleFunc("/products/random", h.RandomProduct).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	r.HandleFunc("/categories", h.ListCategories).Methods("GET")
	r.HandleFunc("/search", h.Search).Methods("GET")
	r.HandleFunc("/search/suggest", h.Suggest).Methods("GET")
	r.HandleFunc("/offers", h.Offers).Methods("GET")
	r.HandleFunc("/recently-viewed", h.RecentlyViewed).Methods("GET")

	// Cart
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/update", h.UpdateCartItem).Methods("POST")
	r.HandleFunc("/cart/remove", h.RemoveFromCart).Methods("POST")
	r.HandleFunc("/cart/clear", h.ClearCart).Methods("POST")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")

	// Notifications and state
	r.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	r.HandleFunc("/notifications/{id}", h.DismissNotification).Methods("DELETE")
	r.HandleFunc("/state", h.State).Methods("GET")
}

// --- request / response shapes ---
type addCartReq struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"gte=0"` // 0 means 1
}

type updateCartReq struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity"` // <= 0 removes the line
}

type removeCartReq struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

type cartResp struct {
	Items      []model.CartItem `json:"items"`
	TotalItems int              `json:"total_items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	Tax        decimal.Decimal  `json:"tax"`
	Total      decimal.Decimal  `json:"total"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads a JSON body into dst and validates it. It writes the 400
// itself and reports false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeErr(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// catalogProducts returns the cached catalog, fetching it first when empty.
func (h *Handler) catalogProducts(ctx context.Context) ([]model.Product, error) {
	if ps := h.svc.Products(); len(ps) > 0 {
		return ps, nil
	}
	if err := h.svc.FetchProducts(ctx); err != nil {
		return nil, err
	}
	return h.svc.Products(), nil
}

func (h *Handler) cart() cartResp {
	q := h.svc.Quote()
	return cartResp{
		Items:      h.svc.Cart(),
		TotalItems: h.svc.TotalItems(),
		Subtotal:   q.Subtotal,
		Tax:        q.Tax,
		Total:      q.Total,
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func decimalParam(r *http.Request, name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return decimal.NewFromString(raw)
}

// --- Handler ---

// ListProducts handles GET /products?min_price=&max_price=&category=&q=&sort=&page=&per_page=
// An explicit max_price=0 matches only free products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	minPrice, err := decimalParam(r, "min_price", decimal.Zero)
	if err != nil || minPrice.IsNegative() {
		writeErr(w, http.StatusBadRequest, "invalid min_price")
		return
	}
	var maxPrice decimal.NullDecimal
	if h.opts.MaxPrice.IsPositive() {
		maxPrice = decimal.NewNullDecimal(h.opts.MaxPrice)
	}
	if r.URL.Query().Has("max_price") {
		d, err := decimal.NewFromString(r.URL.Query().Get("max_price"))
		if err != nil || d.IsNegative() {
			writeErr(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		maxPrice = decimal.NewNullDecimal(d)
	}
	order, err := browse.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid sort")
		return
	}
	page, err := intParam(r, "page", 1)
	if err != nil || page < 1 {
		writeErr(w, http.StatusBadRequest, "invalid page")
		return
	}
	perPage, err := intParam(r, "per_page", h.opts.PageSize)
	if err != nil || perPage < 1 {
		writeErr(w, http.StatusBadRequest, "invalid per_page")
		return
	}

	ps, err := h.catalogProducts(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	filter := browse.Filter{
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Categories: r.URL.Query()["category"],
		Query:      r.URL.Query().Get("q"),
	}
	writeJSON(w, http.StatusOK, browse.Paginate(browse.Sort(filter.Apply(ps), order), page, perPage))
}

// RefreshProducts handles POST /products/refresh
func (h *Handler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.FetchProducts(r.Context()); err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Products())
}

// RandomProduct handles GET /products/random
func (h *Handler) RandomProduct(w http.ResponseWriter, r *http.Request) {
	h.svc.FetchRandomProduct(r.Context())
	p, ok := h.svc.RandomProduct()
	if !ok {
		writeErr(w, http.StatusNotFound, "no product available")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetProduct handles GET /products/{id} and records the view.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		writeErr(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.svc.FetchProductByID(r.Context(), id)
	if err != nil {
		if catalog.IsNotFound(err) || errors.Is(err, catalog.ErrInvalidResponse) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	if h.recent != nil {
		if err := h.recent.Record(r.Context(), p); err != nil {
			h.log.Warn("could not record recently viewed product", zap.Int("product_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// ListCategories handles GET /categories?q=
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.svc.FetchProductCategories(r.Context())
	cats := h.svc.Categories()
	if q := r.URL.Query().Get("q"); q != "" {
		cats = browse.FilterCategories(cats, q)
	}
	writeJSON(w, http.StatusOK, cats)
}

// Search handles GET /search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalogProducts(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, browse.Search(ps, r.URL.Query().Get("q")))
}

// Suggest handles GET /search/suggest?q=&limit=
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", h.opts.SuggestLimit)
	if err != nil || limit < 1 {
		writeErr(w, http.StatusBadRequest, "invalid limit")
		return
	}
	ps, err := h.catalogProducts(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, browse.Suggest(ps, r.URL.Query().Get("q"), limit))
}

// Offers handles GET /offers
func (h *Handler) Offers(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalogProducts(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, browse.Offers(ps, h.opts.OffersRand))
}

// RecentlyViewed handles GET /recently-viewed
func (h *Handler) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	if h.recent == nil {
		writeJSON(w, http.StatusOK, []model.Product{})
		return
	}
	ps, err := h.recent.Products(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// ListCart handles GET /cart/list
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart())
}

// AddToCart handles POST /cart/add
// body: { "product_id": 1, "quantity": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addCartReq
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, ok := h.lookupProduct(r.Context(), req.ProductID)
	if !ok {
		writeErr(w, http.StatusNotFound, "product not found")
		return
	}
	if err := h.svc.AddToCart(r.Context(), p, req.Quantity); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.cart())
}

// lookupProduct resolves id from the cached catalog, falling back to a
// direct catalog lookup.
func (h *Handler) lookupProduct(ctx context.Context, id int) (model.Product, bool) {
	for _, p := range h.svc.Products() {
		if p.ID == id {
			return p, true
		}
	}
	p, err := h.svc.FetchProductByID(ctx, id)
	if err != nil {
		return model.Product{}, false
	}
	return p, true
}

// UpdateCartItem handles POST /cart/update
// body: { "product_id": 1, "quantity": 3 }
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartReq
	if !h.decode(w, r, &req) {
		return
	}
	h.svc.UpdateCartItemQuantity(r.Context(), req.ProductID, req.Quantity)
	writeJSON(w, http.StatusOK, h.cart())
}

// RemoveFromCart handles POST /cart/remove
// body: { "product_id": 1 }
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req removeCartReq
	if !h.decode(w, r, &req) {
		return
	}
	h.svc.RemoveFromCart(r.Context(), req.ProductID)
	writeJSON(w, http.StatusOK, h.cart())
}

// ClearCart handles POST /cart/clear
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, h.cart())
}

// Checkout handles POST /checkout/order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ord, err := h.svc.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			writeErr(w, http.StatusConflict, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.svc.AddNotification("Order "+ord.Number+" placed", model.SeveritySuccess)
	writeJSON(w, http.StatusCreated, ord)
}

// ListNotifications handles GET /notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Notifications())
}

// DismissNotification handles DELETE /notifications/{id}
func (h *Handler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	h.svc.RemoveNotification(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// State handles GET /state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot())
}
