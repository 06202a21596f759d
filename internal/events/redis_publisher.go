package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher mirrors security events onto a Redis pub/sub channel so
// external consumers (SIEM forwarders, alerting) can follow the stream.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher creates a publisher for the given channel.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// Register subscribes the publisher to every event type on the dispatcher.
func (p *RedisPublisher) Register(dispatcher Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.publish)
	}
}

func (p *RedisPublisher) publish(ctx context.Context, event Event) error {
	if p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode security event", zap.Error(err))
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("failed to publish security event",
			zap.String("type", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}
