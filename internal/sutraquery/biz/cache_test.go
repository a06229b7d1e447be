package biz

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
)

// 辅助函数:创建测试用 Redis 客户端
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // 使用测试专用数据库
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis 不可用,跳过测试")
	}

	client.FlushDB(ctx)
	return client
}

func TestNewQueryCacheWithNilConfig(t *testing.T) {
	cache := NewQueryCache(nil, nil)
	assert.NotNil(t, cache)
	assert.False(t, cache.config.Enabled)
	assert.Equal(t, 1*time.Hour, cache.config.TTL)
	assert.Equal(t, "sutraquery:query:", cache.config.KeyPrefix)
}

func TestQueryCacheSetGet(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewQueryCache(client, &QueryCacheConfig{
		Enabled:   true,
		TTL:       1 * time.Hour,
		KeyPrefix: "test:sutraquery:",
	})

	ctx := context.Background()
	result := &model.QueryResult{
		Answer:     "Perform your duty without attachment (Bhagavad Gita 2.47).",
		Confidence: 0.82,
		Sources: []model.VerseSource{{
			VerseID: "bhagavad_gita_2_47",
			Source:  "bhagavad_gita",
			Chapter: 2,
			Verse:   47,
			Content: "You have a right to perform your duty.",
			Score:   0.91,
		}},
	}

	require.NoError(t, cache.Set(ctx, "what is duty", "", result))

	cached, err := cache.Get(ctx, "what is duty", "")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, result.Answer, cached.Answer)
	assert.Len(t, cached.Sources, 1)
	assert.Equal(t, "bhagavad_gita_2_47", cached.Sources[0].VerseID)
}

func TestQueryCacheMiss(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewQueryCache(client, &QueryCacheConfig{
		Enabled:   true,
		TTL:       1 * time.Hour,
		KeyPrefix: "test:sutraquery:",
	})

	cached, err := cache.Get(context.Background(), "never asked", "")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestQueryCacheSourceFilterKeying(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewQueryCache(client, &QueryCacheConfig{
		Enabled:   true,
		TTL:       1 * time.Hour,
		KeyPrefix: "test:sutraquery:",
	})

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "who is rama", "ramayana", &model.QueryResult{Answer: "filtered"}))

	// 同一问题但无来源过滤,不应命中
	cached, err := cache.Get(ctx, "who is rama", "")
	require.NoError(t, err)
	assert.Nil(t, cached)

	cached, err = cache.Get(ctx, "who is rama", "ramayana")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "filtered", cached.Answer)
}

func TestQueryCacheClear(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := NewQueryCache(client, &QueryCacheConfig{
		Enabled:   true,
		TTL:       1 * time.Hour,
		KeyPrefix: "test:sutraquery:",
	})

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "q1", "", &model.QueryResult{Answer: "a1"}))
	require.NoError(t, cache.Set(ctx, "q2", "", &model.QueryResult{Answer: "a2"}))

	require.NoError(t, cache.Clear(ctx))

	cached, err := cache.Get(ctx, "q1", "")
	require.NoError(t, err)
	assert.Nil(t, cached)

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats["key_count"])
}

func TestQueryCacheDisabled(t *testing.T) {
	cache := NewQueryCache(nil, &QueryCacheConfig{Enabled: false})

	ctx := context.Background()
	// 禁用时 Set 静默成功,Get 返回错误
	assert.NoError(t, cache.Set(ctx, "q", "", &model.QueryResult{Answer: "a"}))
	_, err := cache.Get(ctx, "q", "")
	assert.Error(t, err)

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, false, stats["enabled"])
}
