package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/metrics"
)

const productsJSON = `[
  {"id":1,"title":"Backpack","price":109.95,"description":"Fits 15 inch laptops","category":"men's clothing","image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
  {"id":2,"title":"Ring","price":9.99,"description":"Silver","category":"jewelery","image":"https://img/2.jpg","rating":{"rate":4.6,"count":400}}
]`

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","rating":{"rate":3.9,"count":120}}`))
	})
	mux.HandleFunc("/products/99", func(w http.ResponseWriter, r *http.Request) {
		// unknown ids come back as 200 with no body
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/products/500", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/products/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-number"`))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["electronics","jewelery","men's clothing","women's clothing"]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_Products(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(Config{BaseURL: srv.URL + "/"})
	assert.Equal(t, srv.URL, c.BaseURL())

	ps, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 1, ps[0].ID)
	assert.Equal(t, "men's clothing", ps[0].Category)
	assert.True(t, ps[0].Price.Equal(decimal.RequireFromString("109.95")))
	assert.Equal(t, 120, ps[0].Rating.Count)
}

func TestHTTPClient_Product(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	p, err := c.Product(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Backpack", p.Title)

	_, err = c.Product(ctx, 99)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = c.Product(ctx, 500)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.ErrorIs(t, err, ErrRequestFailed)

	_, err = c.Product(ctx, 7)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	// unregistered path -> ServeMux 404
	_, err = c.Product(ctx, 12345)
	assert.True(t, IsNotFound(err))
}

func TestHTTPClient_Categories(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(Config{BaseURL: srv.URL})

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "jewelery", "men's clothing", "women's clothing"}, cats)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := newCatalogServer(t)
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(Config{BaseURL: url, Timeout: time.Second})
	_, err := c.Products(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPClient(Config{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Categories(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_RecordsMetrics(t *testing.T) {
	srv := newCatalogServer(t)
	reg := prometheus.NewRegistry()
	c := NewHTTPClient(Config{BaseURL: srv.URL}, WithMetrics(metrics.New(reg)), WithHTTPClient(srv.Client()))

	_, _ = c.Products(context.Background())
	_, _ = c.Product(context.Background(), 500)

	n, err := testutil.GatherAndCount(reg, "storefront_catalog_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewHTTPClient_DefaultBaseURL(t *testing.T) {
	c := NewHTTPClient(Config{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}
