package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/apibase/internal/api"
	"github.com/eugenenazirov/apibase/internal/config"
	"github.com/eugenenazirov/apibase/internal/endpoint"
	"github.com/eugenenazirov/apibase/internal/metrics"
	"github.com/eugenenazirov/apibase/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	store    storage.Store
	handler  *api.Handler
	router   http.Handler
	registry *prometheus.Registry
	logger   *zap.Logger
	server   *http.Server
}

// Option adjusts how New builds the application.
type Option func(*options)

type options struct {
	loader endpoint.Loader
}

// WithLoader replaces the env loader derived from the configuration.
func WithLoader(loader endpoint.Loader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// New initializes the application with all dependencies from the provided
// configuration. It fails when the endpoint cannot be resolved.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	o := options{loader: endpoint.NewLoader(cfg.EnvFiles)}
	for _, opt := range opts {
		opt(&o)
	}

	profile, err := endpoint.LookupProfile(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := storage.NewMemoryStore()
	handler := api.NewHandler(store, profile, o.loader,
		api.WithMode(cfg.Mode),
		api.WithMetrics(metrics.New(registry)),
	)

	resolved, _, err := handler.Refresh()
	if err != nil {
		return nil, fmt.Errorf("resolve API base URL: %w", err)
	}
	logger.Info("endpoint resolved",
		zap.String("base_url", resolved.BaseURL),
		zap.String("profile", resolved.Profile),
		zap.String("mode", resolved.Mode),
		zap.String("source", resolved.Source),
	)

	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithPrefix(cfg.APIPrefix),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	rootHandler := BuildRootHandler(cfg.APIPrefix, apiRouter, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		store:    store,
		handler:  handler,
		router:   apiRouter,
		registry: registry,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler mounts the API under prefix and metrics under /metrics.
func BuildRootHandler(prefix string, apiHandler, metricsHandler http.Handler) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")

	mux := http.NewServeMux()
	mux.Handle(prefix+"/", apiHandler)
	mux.Handle("GET /metrics", metricsHandler)
	mux.Handle("/", http.NotFoundHandler())

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
