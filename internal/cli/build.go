package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weaver"
	"github.com/aretw0/weaver/internal/adapters/file"
	"github.com/aretw0/weaver/internal/adapters/llm"
	"github.com/aretw0/weaver/internal/adapters/redis"
	"github.com/aretw0/weaver/internal/adapters/source"
	"github.com/aretw0/weaver/internal/config"
	"github.com/aretw0/weaver/pkg/adapters/memory"
	"github.com/aretw0/weaver/pkg/observability"
	"github.com/aretw0/weaver/pkg/persistence/middleware"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sourceCacheTTL bounds how long a fetched URL body is reused.
const sourceCacheTTL = 10 * time.Minute

// App is the fully wired engine plus the adapters commands need direct access to.
type App struct {
	Engine   *weaver.Engine
	Config   *config.Config
	Logger   *slog.Logger
	Reviewer *file.Reviewer
	Registry *llm.Registry
	Metrics  *observability.Metrics

	gatherer prometheus.Gatherer
	closers  []func() error
}

// BuildOption tweaks the wiring, mainly for tests.
type BuildOption func(*buildOptions)

type buildOptions struct {
	llmOpts []llm.Option
}

// WithLLMOptions forwards options to the capability registry.
func WithLLMOptions(opts ...llm.Option) BuildOption {
	return func(o *buildOptions) {
		o.llmOpts = append(o.llmOpts, opts...)
	}
}

// Build wires configuration into a ready Engine: store, locker, source reader,
// LLM capabilities, reviewer and observability hooks.
func Build(cfg *config.Config, logger *slog.Logger, opts ...BuildOption) (*App, error) {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}

	app := &App{Config: cfg, Logger: logger}

	store, locker, err := app.buildStore()
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	registry, err := llm.NewRegistry(cfg, append([]llm.Option{llm.WithLogger(logger)}, o.llmOpts...)...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("capabilities: %w", err)
	}
	app.Registry = registry

	reader := source.NewReader(
		source.WithHTTPClient(&http.Client{Timeout: cfg.Sources.HTTPTimeout}),
		source.WithMaxBytes(cfg.Sources.MaxBytes),
		source.WithCache(cfg.Sources.CacheEntries, sourceCacheTTL),
	)
	app.closers = append(app.closers, func() error {
		reader.Close()
		return nil
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	app.Metrics = metrics
	app.gatherer = reg

	app.Reviewer = file.NewReviewer(cfg.Dir)
	hooks := observability.LoggingHooks(logger).Merge(metrics.Hooks())

	engineOpts := []weaver.Option{
		weaver.WithStore(store),
		weaver.WithLockTTL(cfg.Storage.LockTTL),
		weaver.WithOrchestrator(registry.Orchestrator()),
		weaver.WithTaskModel(registry),
		weaver.WithSource(reader),
		weaver.WithReviewer(app.Reviewer),
		weaver.WithLifecycleHooks(hooks),
		weaver.WithLogger(logger),
	}
	if locker != nil {
		engineOpts = append(engineOpts, weaver.WithLocker(locker))
	}

	engine, err := weaver.New(engineOpts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = engine
	return app, nil
}

func (a *App) buildStore() (ports.StateStore, ports.Locker, error) {
	cfg := a.Config
	var (
		store  ports.StateStore
		locker ports.Locker
	)
	switch cfg.Storage.Backend {
	case "file":
		store = file.New(cfg.Dir)
		locker = file.NewLocker(cfg.Dir)
	case "redis":
		rs := redis.New(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB,
			redis.WithPrefix(cfg.Storage.Redis.Prefix))
		a.closers = append(a.closers, rs.Close)
		store = rs
		locker = redis.NewLocker(rs.Client(), cfg.Storage.Redis.Prefix, a.Logger)
	case "memory":
		// Single process only: the session manager's in-process locks are enough.
		store = memory.NewStore()
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.EncryptionKey == "" {
		return store, locker, nil
	}
	active, err := middleware.ParseKey(cfg.Storage.EncryptionKey)
	if err != nil {
		return nil, nil, err
	}
	var fallback [][]byte
	for i, k := range cfg.Storage.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	if err != nil {
		return nil, nil, err
	}
	a.Logger.Debug("Corpus encryption enabled", "fallback_keys", len(fallback))
	return middleware.Chain(store, encrypt), locker, nil
}

// MetricsHandler serves the App's Prometheus registry.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})
}

// Close releases backend connections and caches.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
