package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/product/internal/cache"
	"github.com/Alturino/storefront/product/pkg/response"
)

func setupPostgres(t *testing.T, c context.Context) *pgxpool.Pool {
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("storefront"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(c, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(c))

	err = infra.Migrate(c, pool, config.Database{
		Name:          "storefront",
		MigrationPath: "file://../../migrations",
	}, infra.MigrationUp)
	require.NoError(t, err)

	return pool
}

func setupRedis(t *testing.T, c context.Context) *redis.Client {
	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	require.NoError(t, err)
	redisOpt, err := redis.ParseURL(redisConnStr)
	require.NoError(t, err)
	client := redis.NewClient(redisOpt)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(c).Err())

	return client
}

func TestPostgresSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	c := context.Background()
	source := NewPostgresSource(setupPostgres(t, c))

	products, err := source.ListProducts(c)
	require.NoError(t, err)
	require.Len(t, products, 7)
	assert.Equal(t, 1, products[0].ID)
	assert.True(t, decimal.RequireFromString("109.95").Equal(products[0].Price))
	assert.Equal(t, 120, products[0].Rating.Count)

	tests := []struct {
		name     string
		id       int
		category string
		notFound bool
	}{
		{name: "given seeded id should return product", id: 9, category: "electronics"},
		{name: "given unknown id should return not found", id: 3, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := source.GetProduct(c, tt.id)
			if tt.notFound {
				assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.category, product.Category)
		})
	}
}

type countingSource struct {
	list  int
	get   int
	items []response.Product
}

func (s *countingSource) ListProducts(context.Context) ([]response.Product, error) {
	s.list++
	return s.items, nil
}

func (s *countingSource) GetProduct(_ context.Context, id int) (response.Product, error) {
	s.get++
	for _, p := range s.items {
		if p.ID == id {
			return p, nil
		}
	}
	return response.Product{}, commonErrors.ErrProductNotFound
}

func TestCachedSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := context.Background()
	client := setupRedis(t, c)

	inner := &countingSource{items: []response.Product{
		{ID: 1, Title: "Backpack", Category: "men's clothing", Price: decimal.RequireFromString("109.95")},
		{ID: 9, Title: "Hard Drive", Category: "electronics", Price: decimal.NewFromInt(64)},
	}}
	source := NewCachedSource(inner, client, time.Minute)

	for i := 0; i < 3; i++ {
		products, err := source.ListProducts(c)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.True(t, decimal.RequireFromString("109.95").Equal(products[0].Price))
	}
	assert.Equal(t, 1, inner.list)

	ttl, err := client.TTL(c, cache.KeyProductList).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	for i := 0; i < 2; i++ {
		product, err := source.GetProduct(c, 9)
		require.NoError(t, err)
		assert.Equal(t, "Hard Drive", product.Title)
	}
	assert.Equal(t, 1, inner.get)

	for i := 0; i < 2; i++ {
		_, err := source.GetProduct(c, 5)
		assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
	}
	assert.Equal(t, 3, inner.get)
}

func TestCachedSourceFallsThroughWhenCacheIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	inner := &countingSource{items: []response.Product{{ID: 1, Title: "Backpack"}}}
	source := NewCachedSource(inner, client, time.Minute)

	products, err := source.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, inner.list)
}
