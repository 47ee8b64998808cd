// Package realtime publishes completed corrective actions to downstream
// consumers (dashboards, audit sinks) over Redis Pub/Sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/infrastructure/config"
)

// RedisBroadcaster implements channel.Broadcaster using Redis Pub/Sub.
// Publishing is best-effort; a failed publish never fails the action that
// produced the event.
type RedisBroadcaster struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
}

// NewRedisBroadcaster creates a broadcaster with its own Redis connection.
func NewRedisBroadcaster(cfg *config.RedisConfig, logger *zap.Logger) (*RedisBroadcaster, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBroadcaster{
		client:     client,
		ownsClient: true,
		channel:    cfg.Channel,
		logger:     logger,
	}, nil
}

// NewRedisBroadcasterWithClient creates a broadcaster over an existing client.
// The caller retains ownership of the client.
func NewRedisBroadcasterWithClient(client *redis.Client, channelName string, logger *zap.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		client:  client,
		channel: channelName,
		logger:  logger,
	}
}

// Publish sends an action event to all subscribers.
func (b *RedisBroadcaster) Publish(ctx context.Context, event channel.ActionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal action event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish action event: %w", err)
	}

	b.logger.Debug("Published action event",
		zap.String("type", event.Type),
		zap.String("sku", event.SKU),
		zap.String("channel", b.channel))
	return nil
}

// Close releases the Redis connection when the broadcaster owns it.
func (b *RedisBroadcaster) Close() error {
	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

// Ensure RedisBroadcaster implements Broadcaster
var _ channel.Broadcaster = (*RedisBroadcaster)(nil)
