package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/simple-easy-issues/internal/api"
	"github.com/ericfisherdev/simple-easy-issues/internal/api/middleware"
	"github.com/ericfisherdev/simple-easy-issues/internal/config"
	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/repository"
	"github.com/ericfisherdev/simple-easy-issues/internal/services"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// ServiceNames contains constants for service names used in DI container
const (
	ConfigService            = "config"
	LoggerService            = "logger"
	DatabaseService          = "database"
	RedisService             = "redis"
	UserRepositoryService    = "user_repository"
	ProjectRepositoryService = "project_repository"
	IssueRepositoryService   = "issue_repository"
	CommentRepositoryService = "comment_repository"
	TokenRevocationService   = "token_revocation"
	AuthService              = "auth_service"
	UserService              = "user_service"
	ProjectService           = "project_service"
	IssueService             = "issue_service"
	CommentService           = "comment_service"
	HealthService            = "health_service"
	AuthMiddlewareService    = "auth_middleware"
	RateLimiterService       = "rate_limiter"
	RouterService            = "router"
)

const healthCheckTimeout = 2 * time.Second

// Infrastructure holds the already opened resources the services are built on.
type Infrastructure struct {
	Logger   *slog.Logger
	Database *store.Database
	// Redis is nil when Redis is disabled.
	Redis   redis.UniversalClient
	Version string
	// LogOutput receives the text access log.
	LogOutput io.Writer
}

// RegisterServices registers all application services with the DI container
func RegisterServices(container Container, cfg *config.AppConfig, infra Infrastructure) error {
	if err := registerInfrastructure(container, cfg, infra); err != nil {
		return fmt.Errorf("failed to register infrastructure: %w", err)
	}

	if err := registerRepositories(container); err != nil {
		return fmt.Errorf("failed to register repositories: %w", err)
	}

	if err := registerBusinessServices(container); err != nil {
		return fmt.Errorf("failed to register business services: %w", err)
	}

	if err := registerHTTP(container, infra); err != nil {
		return fmt.Errorf("failed to register http layer: %w", err)
	}

	return nil
}

func singleton(name string, factory Factory) func(Container) error {
	return func(c Container) error {
		if err := c.RegisterSingleton(name, factory); err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
		return nil
	}
}

func registerAll(container Container, registrations ...func(Container) error) error {
	for _, register := range registrations {
		if err := register(container); err != nil {
			return err
		}
	}
	return nil
}

func registerInfrastructure(container Container, cfg *config.AppConfig, infra Infrastructure) error {
	if infra.Logger == nil || infra.Database == nil {
		return NewDependencyError("MISSING_INFRASTRUCTURE", "logger and database are required")
	}

	registrations := []func(Container) error{
		singleton(ConfigService, func(context.Context, Container) (interface{}, error) {
			return cfg, nil
		}),
		singleton(LoggerService, func(context.Context, Container) (interface{}, error) {
			return infra.Logger, nil
		}),
		singleton(DatabaseService, func(context.Context, Container) (interface{}, error) {
			return infra.Database, nil
		}),
	}
	if infra.Redis != nil {
		registrations = append(registrations, singleton(RedisService, func(context.Context, Container) (interface{}, error) {
			return infra.Redis, nil
		}))
	}
	return registerAll(container, registrations...)
}

// registerRepositories registers all repository implementations
func registerRepositories(container Container) error {
	return registerAll(container,
		singleton(UserRepositoryService, func(ctx context.Context, c Container) (interface{}, error) {
			db, err := Resolve[*store.Database](ctx, c, DatabaseService)
			if err != nil {
				return nil, err
			}
			return repository.NewUserRepository(db.Users()), nil
		}),
		singleton(ProjectRepositoryService, func(ctx context.Context, c Container) (interface{}, error) {
			db, err := Resolve[*store.Database](ctx, c, DatabaseService)
			if err != nil {
				return nil, err
			}
			return repository.NewProjectRepository(db.Projects()), nil
		}),
		singleton(IssueRepositoryService, func(ctx context.Context, c Container) (interface{}, error) {
			db, err := Resolve[*store.Database](ctx, c, DatabaseService)
			if err != nil {
				return nil, err
			}
			return repository.NewIssueRepository(db.Issues()), nil
		}),
		// Comments share the Issues container.
		singleton(CommentRepositoryService, func(ctx context.Context, c Container) (interface{}, error) {
			db, err := Resolve[*store.Database](ctx, c, DatabaseService)
			if err != nil {
				return nil, err
			}
			return repository.NewCommentRepository(db.Issues()), nil
		}),
		singleton(TokenRevocationService, func(ctx context.Context, c Container) (interface{}, error) {
			if c.Has(RedisService) {
				client, err := Resolve[redis.UniversalClient](ctx, c, RedisService)
				if err != nil {
					return nil, err
				}
				return domain.TokenRevocationStore(services.NewRedisTokenRevocationStore(client)), nil
			}
			return domain.TokenRevocationStore(services.NewMemoryTokenRevocationStore()), nil
		}),
	)
}

// registerBusinessServices registers all business logic services
func registerBusinessServices(container Container) error {
	return registerAll(container,
		singleton(AuthService, func(ctx context.Context, c Container) (interface{}, error) {
			userRepo, err := Resolve[repository.UserRepository](ctx, c, UserRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve user repository: %w", err)
			}
			revocation, err := Resolve[domain.TokenRevocationStore](ctx, c, TokenRevocationService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve token revocation store: %w", err)
			}
			cfg, err := Resolve[*config.AppConfig](ctx, c, ConfigService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve config: %w", err)
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}
			return services.NewAuthService(userRepo, revocation, cfg, logger), nil
		}),
		singleton(UserService, func(ctx context.Context, c Container) (interface{}, error) {
			userRepo, err := Resolve[repository.UserRepository](ctx, c, UserRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve user repository: %w", err)
			}
			authService, err := Resolve[services.AuthService](ctx, c, AuthService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve auth service: %w", err)
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}
			return services.NewUserService(userRepo, authService, logger), nil
		}),
		singleton(ProjectService, func(ctx context.Context, c Container) (interface{}, error) {
			projectRepo, err := Resolve[repository.ProjectRepository](ctx, c, ProjectRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve project repository: %w", err)
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}
			return services.NewProjectService(projectRepo, logger), nil
		}),
		singleton(IssueService, func(ctx context.Context, c Container) (interface{}, error) {
			issueRepo, err := Resolve[repository.IssueRepository](ctx, c, IssueRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve issue repository: %w", err)
			}
			projectRepo, err := Resolve[repository.ProjectRepository](ctx, c, ProjectRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve project repository: %w", err)
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}
			return services.NewIssueService(issueRepo, projectRepo, logger), nil
		}),
		singleton(CommentService, func(ctx context.Context, c Container) (interface{}, error) {
			commentRepo, err := Resolve[repository.CommentRepository](ctx, c, CommentRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve comment repository: %w", err)
			}
			issueRepo, err := Resolve[repository.IssueRepository](ctx, c, IssueRepositoryService)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve issue repository: %w", err)
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}
			return services.NewCommentService(commentRepo, issueRepo, logger), nil
		}),
	)
}

func registerHTTP(container Container, infra Infrastructure) error {
	return registerAll(container,
		singleton(HealthService, func(ctx context.Context, c Container) (interface{}, error) {
			cfg, err := Resolve[*config.AppConfig](ctx, c, ConfigService)
			if err != nil {
				return nil, err
			}
			db, err := Resolve[*store.Database](ctx, c, DatabaseService)
			if err != nil {
				return nil, err
			}

			health := services.NewHealthService(infra.Version, cfg.GetEnvironment())
			health.RegisterChecker(services.NewStoreHealthChecker(db, db.Provider().Name(), healthCheckTimeout))
			if c.Has(RedisService) {
				client, err := Resolve[redis.UniversalClient](ctx, c, RedisService)
				if err != nil {
					return nil, err
				}
				health.RegisterChecker(services.NewRedisHealthChecker(client, healthCheckTimeout))
				health.MarkCritical(services.RedisCheckerName)
			}
			return health, nil
		}),
		singleton(AuthMiddlewareService, func(ctx context.Context, c Container) (interface{}, error) {
			authService, err := Resolve[services.AuthService](ctx, c, AuthService)
			if err != nil {
				return nil, err
			}
			return middleware.NewAuthMiddleware(authService), nil
		}),
		singleton(RateLimiterService, func(ctx context.Context, c Container) (interface{}, error) {
			cfg, err := Resolve[*config.AppConfig](ctx, c, ConfigService)
			if err != nil {
				return nil, err
			}
			logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
			if err != nil {
				return nil, err
			}

			rlConfig := middleware.RateLimitConfig{
				Logger:            logger,
				RequestsPerMinute: cfg.GetRequestsPerMinute(),
				CacheCapacity:     cfg.GetRateLimitCacheCapacity(),
			}
			if c.Has(RedisService) {
				client, err := Resolve[redis.UniversalClient](ctx, c, RedisService)
				if err != nil {
					return nil, err
				}
				rlConfig.Redis = client
			}
			return middleware.NewRateLimitManager(ctx, rlConfig), nil
		}),
		singleton(RouterService, func(ctx context.Context, c Container) (interface{}, error) {
			return buildRouter(ctx, c, infra)
		}),
	)
}

func buildRouter(ctx context.Context, c Container, infra Infrastructure) (*gin.Engine, error) {
	cfg, err := Resolve[*config.AppConfig](ctx, c, ConfigService)
	if err != nil {
		return nil, err
	}
	logger, err := Resolve[*slog.Logger](ctx, c, LoggerService)
	if err != nil {
		return nil, err
	}
	authMiddleware, err := Resolve[*middleware.AuthMiddleware](ctx, c, AuthMiddlewareService)
	if err != nil {
		return nil, err
	}
	authService, err := Resolve[services.AuthService](ctx, c, AuthService)
	if err != nil {
		return nil, err
	}
	userService, err := Resolve[services.UserService](ctx, c, UserService)
	if err != nil {
		return nil, err
	}
	projectService, err := Resolve[services.ProjectService](ctx, c, ProjectService)
	if err != nil {
		return nil, err
	}
	issueService, err := Resolve[services.IssueService](ctx, c, IssueService)
	if err != nil {
		return nil, err
	}
	commentService, err := Resolve[services.CommentService](ctx, c, CommentService)
	if err != nil {
		return nil, err
	}
	healthService, err := Resolve[*services.HealthService](ctx, c, HealthService)
	if err != nil {
		return nil, err
	}

	routerConfig := api.RouterConfig{
		Logger:         logger,
		Version:        infra.Version,
		Environment:    cfg.GetEnvironment(),
		AllowedOrigins: cfg.GetAllowedOrigins(),
		LogFormat:      cfg.GetLogFormat(),
		AccessLog:      infra.LogOutput,
	}
	if cfg.IsRateLimitEnabled() {
		routerConfig.RateLimiter, err = Resolve[*middleware.RateLimitManager](ctx, c, RateLimiterService)
		if err != nil {
			return nil, err
		}
	}

	return api.NewRouter(routerConfig, authMiddleware, api.Handlers{
		Auth:    api.NewAuthHandler(userService, authService, cfg.GetRefreshTokenExpiration()),
		User:    api.NewUserHandler(userService),
		Project: api.NewProjectHandler(projectService),
		Issue:   api.NewIssueHandler(issueService),
		Comment: api.NewCommentHandler(commentService),
		Health:  api.NewHealthHandler(healthService),
	}), nil
}
