package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flashcart/insights/internal/analytics"
)

// RedisClient wraps Redis functionality for response caching and rate
// limiting. The tables themselves live in process memory; Redis only holds
// computed report payloads so that repeated dashboard refreshes with the
// same filter set skip the aggregation pass.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// CacheConfig holds Redis cache configuration
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient creates a new Redis client
func NewRedisClient(config CacheConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// ========================================
// REPORT CACHE
// ========================================

// StoreReport caches a computed report keyed by its canonical filter string.
func (r *RedisClient) StoreReport(filterKey string, report *analytics.Report, ttl time.Duration) error {
	key := fmt.Sprintf("report:%s", filterKey)
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return r.client.Set(r.ctx, key, data, ttl).Err()
}

// GetReport retrieves a cached report. The second return value reports a
// cache hit; a miss is not an error.
func (r *RedisClient) GetReport(filterKey string) (*analytics.Report, bool, error) {
	key := fmt.Sprintf("report:%s", filterKey)
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get report: %w", err)
	}

	var report analytics.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, true, nil
}

// ========================================
// RATE LIMITING
// ========================================

// CheckRateLimit checks if rate limit is exceeded using a sliding window.
func (r *RedisClient) CheckRateLimit(identifier, endpoint string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	nowUnix := now.UnixNano()
	windowStart := now.Add(-window).UnixNano()
	key := fmt.Sprintf("ratelimit:%s:%s", identifier, endpoint)

	pipe := r.client.Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(r.ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Add current request with unique member (nanosecond timestamp)
	member := fmt.Sprintf("%d", nowUnix)
	pipe.ZAdd(r.ctx, key, redis.Z{
		Score:  float64(nowUnix),
		Member: member,
	})

	zcard := pipe.ZCard(r.ctx, key)
	pipe.Expire(r.ctx, key, window*2)

	if _, err := pipe.Exec(r.ctx); err != nil {
		return false, err
	}

	count, err := zcard.Result()
	if err != nil {
		return false, err
	}

	if count > int64(limit) {
		// Remove the request we just added since it exceeded the limit
		r.client.ZRem(r.ctx, key, member)
		return false, nil
	}

	return true, nil
}

// ========================================
// GENERIC CACHE OPERATIONS
// ========================================

// Set stores a value with TTL
func (r *RedisClient) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, data, ttl).Err()
}

// Get retrieves a value
func (r *RedisClient) Get(key string, dest interface{}) error {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key
func (r *RedisClient) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Ping checks Redis connection
func (r *RedisClient) Ping() error {
	return r.client.Ping(r.ctx).Err()
}
