package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/claim_fence.lua
var claimFenceScript string

//go:embed scripts/release_fence.lua
var releaseFenceScript string

const fencePrefix = "checkout:"

// Client guards checkouts across service instances with Redis fences.
// A fence is owned by the client that claimed it; only the owner releases it.
type Client struct {
	rdb           *redis.Client
	owner         string
	claimScript   *redis.Script
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newClient(rdb), nil
}

func newClient(rdb *redis.Client) *Client {
	return &Client{
		rdb:           rdb,
		owner:         uuid.New().String(),
		claimScript:   redis.NewScript(claimFenceScript),
		releaseScript: redis.NewScript(releaseFenceScript),
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping reports whether Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Claim takes the checkout fence for key for ttl.
// Returns false if another owner holds it.
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("fence ttl must be positive, got %s", ttl)
	}

	result, err := c.claimScript.Run(ctx, c.rdb, []string{fenceKey(key)}, c.owner, ttl.Milliseconds()).Result()
	if err != nil {
		return false, fmt.Errorf("claim fence script failed: %w", err)
	}

	claimed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type %T", result)
	}
	return claimed == 1, nil
}

// Release drops the fence for key if this client holds it
func (c *Client) Release(ctx context.Context, key string) error {
	if _, err := c.releaseScript.Run(ctx, c.rdb, []string{fenceKey(key)}, c.owner).Result(); err != nil {
		return fmt.Errorf("release fence script failed: %w", err)
	}
	return nil
}

func fenceKey(key string) string {
	return fencePrefix + key
}
