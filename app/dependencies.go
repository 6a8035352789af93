package app

import (
	"context"
	"fmt"

	"github.com/upb/webshop/config"
	"github.com/upb/webshop/internal/observability"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/repositories/postgres"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/services/cart"
	"github.com/upb/webshop/services/catalog"
	"github.com/upb/webshop/services/orders"
	"github.com/upb/webshop/services/users"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics // nil when metrics are disabled

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users      repositories.UserRepository
	Categories repositories.CategoryRepository
	Products   repositories.ProductRepository
	Orders     repositories.OrderRepository
	TxManager  repositories.TransactionManager

	// Authentication
	Codec         *auth.TokenCodec
	Registry      auth.RefreshTokenRegistry
	Authenticator *middleware.RequestAuthenticator

	// Services
	UserService    *users.Service
	AuthService    *auth.Service
	CatalogService *catalog.Service
	CartService    *cart.Service
	OrderService   *orders.Service
}

// NewDependencies connects to the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := Build(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// Build wires every dependency on top of an existing repository factory
func Build(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if cfg.Database.InitSchema {
		if err := deps.DB.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	deps.initRepositories()

	if cfg.Observability.MetricsEnabled {
		metrics, err := observability.NewMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		deps.Metrics = metrics
	}

	if err := deps.initAuth(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.initServices(cfg)

	if err := deps.initGauges(); err != nil {
		_ = deps.Registry.Close()
		return nil, fmt.Errorf("failed to register gauges: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.String("registry_backend", cfg.Registry.Backend),
		zap.Bool("metrics", deps.Metrics != nil))
	return deps, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Categories = repos.Categories
	d.Products = repos.Products
	d.Orders = repos.Orders
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initAuth builds the token codec, the refresh token registry and the user service
// that both authentication paths resolve principals through
func (d *Dependencies) initAuth(ctx context.Context, cfg *config.Config) error {
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	d.Codec = codec

	switch cfg.Registry.Backend {
	case "redis":
		registry, err := auth.NewRedisRegistry(ctx, auth.RedisConfig{
			Addr:     cfg.Registry.RedisAddr,
			Password: cfg.Registry.RedisPassword,
			DB:       cfg.Registry.RedisDB,
			Prefix:   cfg.Registry.KeyPrefix,
			TTL:      cfg.JWT.RefreshTTL,
		})
		if err != nil {
			return err
		}
		d.Registry = registry
	default:
		var ttl = cfg.JWT.RefreshTTL
		if !cfg.Registry.SweepEnabled {
			ttl = 0
		}
		d.Registry = auth.NewMemoryRegistry(ttl, cfg.Registry.SweepInterval)
	}

	hasher := auth.NewBcryptVerifier(bcrypt.DefaultCost)
	d.UserService = users.NewService(d.Users, hasher, d.Logger)

	d.AuthService = auth.NewService(d.UserService, hasher, codec, d.Registry, d.Logger)
	if d.Metrics != nil {
		d.AuthService.WithRecorder(d.Metrics)
	}

	d.Authenticator = middleware.NewRequestAuthenticator(codec, d.UserService, d.Logger)

	d.Logger.Info("auth initialized", zap.String("registry_backend", cfg.Registry.Backend))
	return nil
}

// initServices initializes the catalog, cart and order services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.CatalogService = catalog.NewService(d.Categories, d.Products, d.Logger)
	d.CartService = cart.NewService(d.Products, cfg.Cart.IdleTTL, cfg.Cart.CleanupInterval, d.Logger)
	d.OrderService = orders.NewService(d.Orders, d.Products, d.Users, d.CartService, d.TxManager, d.Logger)
}

// initGauges exposes in-memory state sizes as gauges
func (d *Dependencies) initGauges() error {
	if d.Metrics == nil {
		return nil
	}

	if err := d.Metrics.TrackGauge("carts_active", "Carts currently held in memory", func() float64 {
		return float64(d.CartService.Len())
	}); err != nil {
		return err
	}

	if mem, ok := d.Registry.(*auth.MemoryRegistry); ok {
		return d.Metrics.TrackGauge("refresh_tokens_live", "Refresh tokens held by the in-memory registry", func() float64 {
			return float64(mem.Len())
		})
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Registry != nil {
		if err := d.Registry.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close refresh registry: %w", err))
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
