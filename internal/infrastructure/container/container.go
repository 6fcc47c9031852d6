// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/recipemanager/server/internal/application/contact"
	"github.com/recipemanager/server/internal/application/importer"
	"github.com/recipemanager/server/internal/application/ingredient"
	"github.com/recipemanager/server/internal/application/recipe"
	"github.com/recipemanager/server/internal/application/user"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/events"
	"github.com/recipemanager/server/internal/infrastructure/http/handlers"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/infrastructure/http/server"
	"github.com/recipemanager/server/internal/infrastructure/mealdb"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/infrastructure/notification"
	gormRepo "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"github.com/recipemanager/server/internal/infrastructure/persistence/memory"
	"github.com/recipemanager/server/internal/infrastructure/persistence/migrations"
	"github.com/recipemanager/server/internal/infrastructure/persistence/postgres"
	"github.com/recipemanager/server/internal/infrastructure/persistence/redis"
	"github.com/recipemanager/server/internal/infrastructure/persistence/sqlite"
	"github.com/recipemanager/server/internal/infrastructure/security"
	"github.com/recipemanager/server/internal/infrastructure/storage"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/healthcheck"
	"github.com/recipemanager/server/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Module wires the HTTP API process
var Module = fx.Options(
	CoreModule,
	HTTPModule,
	LifecycleModule,
)

// CoreModule provides everything below the HTTP layer. The importer CLI
// runs on it alone.
var CoreModule = fx.Options(
	// Infrastructure modules
	LoggerModule,
	TelemetryModule,
	DatabaseModule,
	CacheModule,

	// Repository modules
	RepositoryModule,

	// Adapters
	AdapterModule,

	// Event modules
	EventModule,

	// Service modules
	ServiceModule,
)

// ConfigModule loads configuration from path; an empty path searches the
// default locations
func ConfigModule(path string) fx.Option {
	return fx.Provide(func() (*config.Config, error) {
		return config.Load(path)
	})
}

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
	func(cfg *config.Config, log *zap.Logger) gormLogger.Interface {
		return logger.NewGormLogger(log, cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
	},
)

// TelemetryModule provides Prometheus metrics and the OpenTelemetry providers
var TelemetryModule = fx.Provide(
	monitoring.NewMetrics,
	func(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.Metrics, log *zap.Logger) (*monitoring.Telemetry, error) {
		telemetry, err := monitoring.NewTelemetry(context.Background(), cfg, metrics, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: telemetry.Shutdown})
		return telemetry, nil
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(NewDatabase)

// NewDatabase opens the configured database, brings the schema up to date
// and seeds an empty catalogue
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, gl gormLogger.Interface, log *zap.Logger) (*gorm.DB, error) {
	var db *gorm.DB

	switch cfg.Database.Driver {
	case "postgres":
		cm, err := postgres.NewConnectionManager(cfg, gl, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
			return cm.Close()
		}})
		db = cm.GetDB()

		if cfg.Database.AutoMigrate {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			migrator, err := migrations.New(sqlDB, log)
			if err != nil {
				return nil, err
			}
			// Closing the migrator would close the shared pool
			if err := migrator.Up(); err != nil {
				return nil, err
			}
		}

		log.Info("Connected to PostgreSQL database",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database),
		)

	default:
		var err error
		db, err = sqlite.SetupDatabase(cfg.Database.Path, gl)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}})

		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	}

	if cfg.Database.Seed {
		err := sqlite.SeedDatabase(context.Background(), db, sqlite.SeedOptions{
			AdminEmail:    cfg.Auth.AdminEmail,
			AdminPassword: cfg.Auth.AdminPassword,
		})
		if err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}

	return db, nil
}

// CacheModule provides caching. The Redis client is nil when Redis is
// disabled.
var CacheModule = fx.Provide(NewCache)

// NewCache returns the Redis cache when enabled and the in-process cache
// otherwise
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.CacheRepository, *goredis.Client, error) {
	if !cfg.Redis.Enabled {
		cache := memory.NewCacheRepository(time.Minute)
		lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
			return cache.Close()
		}})
		log.Info("Using in-memory cache")
		return cache, nil, nil
	}

	client, err := redis.NewClient(context.Background(), cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error {
		return client.Close()
	}})
	return redis.NewCacheRepository(client, cfg.Redis.KeyPrefix, log), client, nil
}

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewUserRepository,
	gormRepo.NewIngredientRepository,
	gormRepo.NewRecipeRepository,
	gormRepo.NewContactRepository,
)

// AdapterModule provides the outbound adapters
var AdapterModule = fx.Provide(
	validation.New,
	storage.New,
	notification.New,
	fx.Annotate(
		security.NewAuthService,
		fx.As(new(outbound.TokenService)),
	),
	func(cfg *config.Config, log *zap.Logger) outbound.RecipeSource {
		return mealdb.NewClient(cfg.Importer, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		user.NewUserService,
		fx.As(new(inbound.UserService)),
	),
	fx.Annotate(
		ingredient.NewIngredientService,
		fx.As(new(inbound.IngredientService)),
	),
	fx.Annotate(
		contact.NewContactService,
		fx.As(new(inbound.ContactService)),
	),
	func(
		recipes outbound.RecipeRepository,
		ingredients outbound.IngredientRepository,
		store outbound.StorageService,
		cache outbound.CacheRepository,
		publisher outbound.EventPublisher,
		v *validation.Validator,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.RecipeService {
		return recipe.NewRecipeService(recipes, ingredients, store, cache, publisher, v, recipe.Options{
			Images: recipe.ImagePolicy{
				MaxBytes:     cfg.Storage.MaxFileSize,
				AllowedTypes: cfg.Storage.AllowedTypes,
			},
			CacheTTL: cfg.Storage.CacheTTL,
		}, log)
	},
	func(
		source outbound.RecipeSource,
		recipes outbound.RecipeRepository,
		ingredients outbound.IngredientRepository,
		users outbound.UserRepository,
		publisher outbound.EventPublisher,
		cache outbound.CacheRepository,
		cfg *config.Config,
		log *zap.Logger,
	) inbound.ImportService {
		return importer.NewService(source, recipes, ingredients, users, publisher, cache, importer.Options{
			IngredientLimit:  cfg.Importer.IngredientLimit,
			MealsPerCategory: cfg.Importer.MealsPerCategory,
			Categories:       cfg.Importer.Categories,
		}, log)
	},
)

// EventModule provides event handling
var EventModule = fx.Options(
	fx.Provide(
		func(telemetry *monitoring.Telemetry, log *zap.Logger) (*events.Dispatcher, error) {
			return events.NewDispatcher(telemetry.Meter(), log)
		},
		func(d *events.Dispatcher) outbound.EventPublisher {
			return d
		},
	),
	fx.Invoke(RegisterEventHandlers),
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger, telemetry *monitoring.Telemetry, metrics *monitoring.Metrics) *middleware.Middleware {
		return middleware.New(cfg, log, telemetry.Tracer(), metrics)
	},
	NewHandlers,
	NewHealthCheck,
	server.NewServer,
)

// NewHandlers builds the API handlers
func NewHandlers(
	cfg *config.Config,
	users inbound.UserService,
	ingredients inbound.IngredientService,
	recipes inbound.RecipeService,
	contacts inbound.ContactService,
	imports inbound.ImportService,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) server.Handlers {
	return server.Handlers{
		Auth:        handlers.NewAuthHandler(users, cfg.Auth, metrics, log),
		Ingredients: handlers.NewIngredientHandler(ingredients),
		Recipes:     handlers.NewRecipeHandler(recipes, log),
		Contact:     handlers.NewContactHandler(contacts, metrics),
		Admin:       handlers.NewAdminHandler(imports, metrics, cfg.Importer.RunTimeout, log),
	}
}

// NewHealthCheck registers the dependency checks. TheMealDB is only needed
// for imports, so its outage degrades the service instead of failing it.
func NewHealthCheck(cfg *config.Config, db *gorm.DB, redisClient *goredis.Client, log *zap.Logger) (*healthcheck.HealthCheck, error) {
	health := healthcheck.New(cfg.App.Version, log.Named("health"))

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	if redisClient != nil {
		health.Register("redis", healthcheck.NewRedisChecker(redisClient))
	}

	health.Register("themealdb", healthcheck.NewExternalServiceChecker(
		"themealdb",
		cfg.Importer.BaseURL+"/categories.php",
		cfg.Importer.Timeout,
		false,
	))

	return health, nil
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts and stops the HTTP server with the app.
// A server that fails to listen shuts the app down.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting RecipeManager",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down RecipeManager")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
