// Package cache provides a short-TTL Redis cache for chat responses, so
// repeated identical questions skip the ranking pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/croplore/agrihub/internal/chatbot"
)

const chatKeyPrefix = "chat:answer:"

// ErrMiss is returned when no cached response exists for a key.
var ErrMiss = errors.New("cache miss")

// ChatCache stores assembled chat responses keyed by normalized query.
type ChatCache interface {
	Get(ctx context.Context, key string) (chatbot.Response, error)
	Set(ctx context.Context, key string, resp chatbot.Response, ttl time.Duration) error
}

// Conn dials Redis and verifies the connection.
func Conn(ctx context.Context, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
	}
	return client, nil
}

type redisChatCache struct {
	client *redis.Client
}

// NewRedisChatCache wraps a Redis client as a ChatCache.
func NewRedisChatCache(client *redis.Client) ChatCache {
	return &redisChatCache{client: client}
}

func (c *redisChatCache) Get(ctx context.Context, key string) (chatbot.Response, error) {
	var resp chatbot.Response
	data, err := c.client.Get(ctx, chatKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return resp, ErrMiss
	}
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func (c *redisChatCache) Set(ctx context.Context, key string, resp chatbot.Response, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, chatKeyPrefix+key, data, ttl).Err()
}
