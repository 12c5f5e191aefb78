package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 3 * time.Second

// RedisPublisher publishes events as JSON on a Redis pub/sub channel so other
// processes (or dashboard replicas) can follow progress.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) LogEvent(event Event) error {
	if p == nil || p.client == nil {
		return fmt.Errorf("redis publisher client is nil")
	}
	if p.channel == "" {
		return fmt.Errorf("redis publisher channel is empty")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish progress event: %w", err)
	}
	return nil
}
