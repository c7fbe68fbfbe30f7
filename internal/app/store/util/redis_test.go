package util

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hazelmart/internal/app/store/entity"
)

func setupTestCache(t *testing.T) *RedisClient {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisClientFromClient(client)
}

func TestRedisClient_SetGetProducts(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	products := []entity.Product{
		{ID: primitive.NewObjectID(), Name: "Chair", Price: 25.99, AverageRating: 4.5, NumOfReviews: 2},
		{ID: primitive.NewObjectID(), Name: "Table", Price: 119.99},
	}

	require.NoError(t, cache.SetProducts(ctx, products, time.Hour))

	got, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, products[0].ID, got[0].ID)
	assert.Equal(t, 4.5, got[0].AverageRating)
}

func TestRedisClient_GetProducts_Empty(t *testing.T) {
	cache := setupTestCache(t)

	got, err := cache.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_DeleteProducts(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	products := []entity.Product{{ID: primitive.NewObjectID(), Name: "Chair"}}
	require.NoError(t, cache.SetProducts(ctx, products, time.Hour))
	require.NoError(t, cache.DeleteProducts(ctx))

	got, err := cache.GetProducts(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
