package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/greenvvay/Parking/internal/domain"
)

const (
	DefaultChannel     = "parking:events"
	DefaultSnapshotKey = "parking:occupancy"
)

// redisClient is the part of redis.Cmdable the publisher uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisPublisher publishes every notification on a pub/sub channel and keeps
// an occupancy hash that other services can read without subscribing.
type RedisPublisher struct {
	client      redisClient
	channel     string
	snapshotKey string
}

func NewRedisPublisher(client redisClient, channel, snapshotKey string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if snapshotKey == "" {
		snapshotKey = DefaultSnapshotKey
	}
	return &RedisPublisher{client: client, channel: channel, snapshotKey: snapshotKey}
}

func (p *RedisPublisher) Name() string { return "redis" }

func (p *RedisPublisher) Deliver(ctx context.Context, n domain.FacilityEventNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("RedisPublisher.Deliver: marshal: %w", err)
	}
	if err := p.client.HSet(ctx, p.snapshotKey,
		"facility_id", n.FacilityID,
		"available", n.Available,
		"capacity", n.Capacity,
		"updated_at", n.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	).Err(); err != nil {
		return fmt.Errorf("RedisPublisher.Deliver: snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("RedisPublisher.Deliver: publish: %w", err)
	}
	return nil
}

// NewRedisClient connects and pings once.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
