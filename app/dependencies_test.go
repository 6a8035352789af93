package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/webshop/config"
	"github.com/upb/webshop/repositories/postgres"
	"github.com/upb/webshop/services/auth"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret-for-tests-0123456789",
			RefreshSecret: "refresh-secret-for-tests-0123456789",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
			Issuer:        "webshop-test",
		},
		Registry: config.RegistryConfig{
			Backend:       "memory",
			SweepInterval: time.Minute,
			KeyPrefix:     "test",
		},
		Cart: config.CartConfig{
			IdleTTL:         time.Hour,
			CleanupInterval: time.Minute,
		},
		Observability: config.ObservabilityConfig{
			LogLevel:       "error",
			MetricsEnabled: true,
		},
	}
}

func mockFactory(t *testing.T) (*postgres.RepositoryFactory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := zap.NewNop()
	return postgres.NewRepositoryFactoryWithDB(postgres.Wrap(db, logger), logger), mock
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("memory registry with metrics", func(t *testing.T) {
		factory, mock := mockFactory(t)
		deps, err := Build(ctx, testConfig(), factory, zap.NewNop())
		require.NoError(t, err)

		assert.NotNil(t, deps.DB)
		assert.NotNil(t, deps.Users)
		assert.NotNil(t, deps.Categories)
		assert.NotNil(t, deps.Products)
		assert.NotNil(t, deps.Orders)
		assert.NotNil(t, deps.TxManager)
		assert.NotNil(t, deps.Codec)
		assert.NotNil(t, deps.Authenticator)
		assert.NotNil(t, deps.AuthService)
		assert.NotNil(t, deps.CatalogService)
		assert.NotNil(t, deps.CartService)
		assert.NotNil(t, deps.OrderService)
		require.NotNil(t, deps.Metrics)
		assert.IsType(t, &auth.MemoryRegistry{}, deps.Registry)

		families, err := deps.Metrics.Gatherer().Gather()
		require.NoError(t, err)
		names := make(map[string]bool)
		for _, f := range families {
			names[f.GetName()] = true
		}
		assert.True(t, names["webshop_carts_active"])
		assert.True(t, names["webshop_refresh_tokens_live"])

		mock.ExpectClose()
		assert.NoError(t, deps.Close(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.MetricsEnabled = false

		factory, _ := mockFactory(t)
		deps, err := Build(ctx, cfg, factory, zap.NewNop())
		require.NoError(t, err)
		assert.Nil(t, deps.Metrics)
	})

	t.Run("redis registry", func(t *testing.T) {
		server := miniredis.RunT(t)

		cfg := testConfig()
		cfg.Registry.Backend = "redis"
		cfg.Registry.RedisAddr = server.Addr()

		factory, _ := mockFactory(t)
		deps, err := Build(ctx, cfg, factory, zap.NewNop())
		require.NoError(t, err)

		registry, ok := deps.Registry.(*auth.RedisRegistry)
		require.True(t, ok)
		require.NoError(t, registry.Put(ctx, "a@x.com", "token"))
		assert.True(t, server.Exists("test:refresh:a@x.com"))

		assert.NoError(t, deps.Registry.Close())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := testConfig()
		cfg.Registry.Backend = "redis"
		cfg.Registry.RedisAddr = "127.0.0.1:1"

		factory, _ := mockFactory(t)
		_, err := Build(ctx, cfg, factory, zap.NewNop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize auth")
	})

	t.Run("schema initialization", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.InitSchema = true

		factory, mock := mockFactory(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := Build(ctx, cfg, factory, zap.NewNop())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
