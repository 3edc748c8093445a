package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/feedbacklens/backend/internal/metrics"
	"github.com/feedbacklens/backend/pkg/logger"
)

// Client caches translation and language-detection results so repeated
// analyses of the same content do not re-pay the oracle.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// GetText implements translation.Cache.
func (c *Client) GetText(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, "text:"+key).Result()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues("translation").Inc()
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached text: %w", err)
	}

	metrics.CacheHits.WithLabelValues("translation").Inc()
	logger.Debug("Translation cache hit", zap.String("key", key))
	return val, true, nil
}

// SetText implements translation.Cache.
func (c *Client) SetText(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, "text:"+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache text: %w", err)
	}
	return nil
}
