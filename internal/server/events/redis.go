package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix is prepended to the user id to form the Redis channel.
const ChannelPrefix = "careermemory:events:"

type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisPublisher fans events out to other processes over Redis pub/sub,
// one channel per user.
type RedisPublisher struct {
	client redisClient
}

func NewRedisPublisher(client redisClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// NewRedisClient connects to addr, which may be "host:port" or a
// redis:// URL.
func NewRedisClient(addr string) (*redis.Client, error) {
	if opts, err := redis.ParseURL(addr); err == nil {
		return redis.NewClient(opts), nil
	}
	if addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// Channel returns the channel userID's events are published on.
func Channel(userID string) string {
	return ChannelPrefix + userID
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(ev.UserID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
