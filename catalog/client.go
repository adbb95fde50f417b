// Package catalog is a read-only client for the remote product catalog
// (Fake Store API shape).
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storefront/metrics"
	"storefront/model"
)

// DefaultBaseURL is the public catalog the storefront was built against.
const DefaultBaseURL = "https://fakestoreapi.com"

const maxResponseSize = 10 << 20

// Client is the set of catalog reads the service depends on.
type Client interface {
	Products(ctx context.Context) ([]model.Product, error)
	Product(ctx context.Context, id int) (model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	BaseURL() string
}

// Config configures an HTTPClient. A zero Timeout means no client timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	metrics    *metrics.Metrics
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

func NewHTTPClient(cfg Config, opts ...Option) *HTTPClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	h := &HTTPClient{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTPClient) BaseURL() string { return h.baseURL }

// Products issues GET /products.
func (h *HTTPClient) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := h.get(ctx, "products", "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product issues GET /products/{id}.
func (h *HTTPClient) Product(ctx context.Context, id int) (model.Product, error) {
	var out *model.Product
	path := "/products/" + strconv.Itoa(id)
	if err := h.get(ctx, "product", path, &out); err != nil {
		return model.Product{}, err
	}
	// the public catalog answers unknown ids with 200 and an empty body
	if out == nil {
		return model.Product{}, fmt.Errorf("%w: GET %s: empty body", ErrInvalidResponse, path)
	}
	return *out, nil
}

// Categories issues GET /products/categories.
func (h *HTTPClient) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := h.get(ctx, "categories", "/products/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *HTTPClient) get(ctx context.Context, endpoint, path string, out any) (err error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		h.metrics.ObserveCatalogRequest(endpoint, outcome, time.Since(start))
		if err != nil {
			h.log.Debug("catalog request failed",
				zap.String("path", path), zap.String("outcome", outcome), zap.Error(err))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		outcome = "bad_request"
		return fmt.Errorf("catalog: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		outcome = "unavailable"
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "status_error"
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		outcome = "unavailable"
		return fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		// leave out at its zero value; callers decide whether that is an error
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		outcome = "invalid_response"
		return fmt.Errorf("%w: GET %s: %v", ErrInvalidResponse, path, err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the catalog.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
