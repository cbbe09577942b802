package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/logging"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
	"github.com/ericfisherdev/simple-easy-issues/internal/store/memory"
	"github.com/ericfisherdev/simple-easy-issues/internal/store/pocketbase"
)

// Options overrides parts of the infrastructure, mainly for tests.
type Options struct {
	Version string
	// LogOutput defaults to stdout.
	LogOutput io.Writer
	// Provider replaces the backend selected by STORE_BACKEND.
	Provider store.Provider
	// Redis replaces the client built from REDIS_* settings.
	Redis redis.UniversalClient
}

// Application is a fully wired server.
type Application struct {
	Config      *config.AppConfig
	Logger      *slog.Logger
	Database    *store.Database
	Router      *gin.Engine
	RateLimiter *middleware.RateLimitManager

	container Container
	redis     redis.UniversalClient
	ownsRedis bool
}

// OpenProvider opens the store backend named by the configuration.
func OpenProvider(cfg *config.AppConfig, logger *slog.Logger) (store.Provider, error) {
	switch cfg.GetStoreBackend() {
	case config.StoreBackendMemory:
		return memory.NewProvider(), nil
	case config.StoreBackendPocketBase:
		return pocketbase.Open(pocketbase.Config{
			DataDir:      cfg.GetStoreDataDir(),
			QueryTimeout: cfg.GetStoreOperationTimeout(),
			Logger:       logger,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.GetStoreBackend())
	}
}

// OpenDatabase opens the configured backend and connects every container.
func OpenDatabase(ctx context.Context, cfg *config.AppConfig, provider store.Provider, logger *slog.Logger) (*store.Database, error) {
	if provider == nil {
		var err error
		provider, err = OpenProvider(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	return store.Connect(ctx, provider, store.Options{
		Logger:           logger,
		OperationTimeout: cfg.GetStoreOperationTimeout(),
	})
}

// NewLogger builds the process logger from the configuration.
func NewLogger(cfg *config.AppConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return logging.New(cfg.GetLogLevel(), cfg.GetLogFormat(), w)
}

// New validates cfg, opens the store and Redis, and builds the router. The store must
// be reachable; Redis problems are logged and left to the health checks.
func New(ctx context.Context, cfg *config.AppConfig, opts Options) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logOutput := opts.LogOutput
	if logOutput == nil {
		logOutput = os.Stdout
	}
	logger := NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	db, err := OpenDatabase(ctx, cfg, opts.Provider, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Database:  db,
		container: NewContainer(),
		redis:     opts.Redis,
	}

	if app.redis == nil && cfg.IsRedisEnabled() {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		app.ownsRedis = true
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable at startup", "error", err)
		}
	}

	if err := RegisterServices(app.container, cfg, Infrastructure{
		Logger:    logger,
		Database:  db,
		Redis:     app.redis,
		Version:   opts.Version,
		LogOutput: logOutput,
	}); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Router, err = Resolve[*gin.Engine](ctx, app.container, RouterService)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}
	if cfg.IsRateLimitEnabled() {
		app.RateLimiter, err = Resolve[*middleware.RateLimitManager](ctx, app.container, RateLimiterService)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	logger.Info("application initialized",
		"environment", cfg.GetEnvironment(),
		"store_backend", db.Provider().Name(),
		"redis_enabled", app.redis != nil,
		"rate_limit_enabled", cfg.IsRateLimitEnabled())
	return app, nil
}

// Container exposes the registry, e.g. to resolve a single service.
func (a *Application) Container() Container {
	return a.container
}

// Close stops the rate limiter and releases Redis and the store.
func (a *Application) Close() error {
	if a.RateLimiter != nil {
		a.RateLimiter.Shutdown()
	}

	var errs []error
	if a.redis != nil && a.ownsRedis {
		errs = append(errs, a.redis.Close())
	}
	if a.Database != nil {
		errs = append(errs, a.Database.Close())
	}
	return errors.Join(errs...)
}
