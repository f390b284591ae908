package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis for the handful of operations the services need.
// It is optional infrastructure: a nil *Client is safe to pass around and
// callers treat cache misses and cache errors the same way.
type Client struct {
	client *redis.Client
}

// NewClient connects to the redis instance at addr
func NewClient(addr string) *Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Client{client: client}
}

// Set stores a value with an expiration
func (r *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value; redis.Nil is returned on a miss
func (r *Client) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// Del removes keys
func (r *Client) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Ping checks connectivity
func (r *Client) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// IsMiss reports whether err is a cache miss
func IsMiss(err error) bool {
	return err == redis.Nil
}
