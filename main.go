package main

// GET /products - Filtered, paginated catalog listing
// GET /products/{id} - Product detail, recorded as recently viewed
// GET /cart/list - Cart lines, item count and price quote
// POST /cart/add - To add product in cart
// POST /cart/remove - To remove product from cart
// POST /checkout/order - Simulated checkout
// GET /metrics - Prometheus metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storefront/catalog"
	"storefront/config"
	"storefront/handler"
	"storefront/logger"
	"storefront/metrics"
	"storefront/recent"
	"storefront/service"
	"storefront/store"
)

const (
	Version = "0.1.0"
	appName = "storefront"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Storefront state service",
		Long: `Storefront mirrors a remote product catalog, keeps the session cart
and notification queue, and serves them as a small JSON API.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (TOML)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(loggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("app", cfg.App.Name))

	// prices go out as JSON numbers, the way the catalog sends them
	decimal.MarshalJSONWithoutQuotes = true

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Store ---
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
	}()
	log.Info("persistent store ready", zap.String("driver", cfg.Store.Driver))

	// --- Service ---
	cl := catalog.NewHTTPClient(
		catalog.Config{BaseURL: cfg.Catalog.BaseURL, Timeout: cfg.Catalog.Timeout},
		catalog.WithLogger(log.Named("catalog")),
		catalog.WithMetrics(m),
	)
	svc := service.NewService(ctx, cl, st,
		service.WithLogger(log.Named("service")),
		service.WithMetrics(m),
		service.WithNotificationTTL(cfg.Notifications.TTL),
		service.WithRandomIDMax(cfg.Catalog.RandomIDMax),
		service.WithTaxRate(decimal.NewFromFloat(cfg.Checkout.TaxRate)),
		service.WithProcessingDelay(cfg.Checkout.ProcessingDelay),
		service.WithFetchDedup(cfg.Catalog.DedupeFetches),
	)
	var serviceInterface service.ServiceInterface = svc

	// --- Handlers ---
	h := handler.NewHandler(serviceInterface, recent.New(st, cfg.Recent.Limit, log.Named("recent")), log.Named("http"), handler.Options{
		PageSize:     cfg.Browse.PageSize,
		SuggestLimit: cfg.Browse.SuggestLimit,
		MaxPrice:     decimal.NewFromFloat(cfg.Browse.MaxPrice),
		MaxBodySize:  cfg.HTTP.MaxBodySize,
	})

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      otelhttp.NewHandler(r, cfg.App.Name),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loggerConfig fills unset log settings from the logger defaults.
// Production always logs JSON.
func loggerConfig(cfg *config.Config) logger.Config {
	lc := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		lc.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		lc.Output = cfg.Log.Output
	}
	if cfg.IsProduction() {
		lc.Format = "json"
	}
	return lc
}

// openStore connects the configured persistent store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("DB connection failed: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	case "redis":
		return store.NewRedisStore(ctx, store.RedisConfig{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}
