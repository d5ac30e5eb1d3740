package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"marketplace-service/internal/domain/document"
	domain "marketplace-service/internal/domain/product"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:         "2b1c6f0e-6a55-4c39-9d7c-0f2b4b8f9d11",
		Name:       "Desk lamp",
		Price:      35.5,
		Email:      "seller@example.com",
		CreatedAt:  time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC),
		Attributes: document.Fields{"condition": "new"},
	}
}

func TestRedisProductCache_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisProductCache(client, 5*time.Minute, zaptest.NewLogger(t))

	p := sampleProduct()
	require.NoError(t, cache.Set(context.Background(), p))
	assert.True(t, mr.Exists("product:"+p.ID))

	cached, err := cache.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, p.Name, cached.Name)
	assert.Equal(t, p.Price, cached.Price)
	assert.Equal(t, p.Email, cached.Email)
	assert.True(t, p.CreatedAt.Equal(cached.CreatedAt))
	assert.Equal(t, "new", cached.Attributes["condition"])
}

func TestRedisProductCache_SetNil(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisProductCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	assert.ErrorContains(t, err, "cannot cache nil product")
}

func TestRedisProductCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisProductCache(client, 5*time.Minute, zaptest.NewLogger(t))

	cached, err := cache.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisProductCache_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisProductCache(client, 5*time.Minute, zaptest.NewLogger(t))

	p := sampleProduct()
	require.NoError(t, cache.Set(context.Background(), p))
	require.NoError(t, cache.Delete(context.Background(), p.ID))

	cached, err := cache.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisProductCache_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisProductCache(client, 2*time.Second, zaptest.NewLogger(t))

	p := sampleProduct()
	require.NoError(t, cache.Set(context.Background(), p))

	mr.FastForward(3 * time.Second)

	cached, err := cache.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisProductCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisProductCache(client, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set("product:bad", "{not-json"))

	cached, err := cache.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.Nil(t, cached)
}
