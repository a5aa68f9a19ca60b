package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss error = redis.Nil

// Client represents a Redis client.
type Client struct {
	client *redis.Client
}

// Redis returns the underlying go-redis client.
func (c *Client) Redis() *redis.Client {
	return c.client
}

// Close closes the Redis connection for graceful shutdown.
func (c *Client) Close() error {
	return c.client.Close()
}

// MustNewClient creates a new Redis client.
func MustNewClient() *Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "redis:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", addr)

	return &Client{client: client}
}

// Cache stores JSON encoded values with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Cache. TTL comes from redis.ttl_seconds.
func NewCache(client *Client) *Cache {
	ttl := time.Duration(viper.GetInt("redis.ttl_seconds")) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Cache{
		client: client.Redis(),
		ttl:    ttl,
	}
}

// Get retrieves value from cache
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(val, dest)
}

// Set stores value in cache
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes keys from cache
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}
