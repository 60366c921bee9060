package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/kaizen-portal-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientAlwaysMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	require.NoError(t, repo.Set(context.Background(), "dash:all", map[string]int{"total": 1}, time.Minute))

	var dest map[string]int
	err := repo.Get(context.Background(), "dash:all", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "dash:*"))
}

func TestCacheRepositoryUnreachableRedisIsNotAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewCacheRepository(client, nil)

	var dest map[string]int
	err := repo.Get(context.Background(), "dash:all", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get dash:all")

	assert.Error(t, repo.Set(context.Background(), "dash:all", map[string]int{"total": 1}, time.Minute))
	assert.Error(t, repo.DeleteByPattern(context.Background(), "dash:*"))
}
