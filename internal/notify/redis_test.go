package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenvvay/Parking/internal/domain"
)

type fakeRedis struct {
	published  map[string][]string
	hashes     map[string][]interface{}
	publishErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{published: map[string][]string{}, hashes: map[string][]interface{}{}}
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.publishErr != nil {
		cmd.SetErr(f.publishErr)
		return cmd
	}
	f.published[channel] = append(f.published[channel], string(message.([]byte)))
	cmd.SetVal(1)
	return cmd
}

func (f *fakeRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.hashes[key] = values
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(values) / 2))
	return cmd
}

func TestRedisPublisher_Deliver(t *testing.T) {
	fake := newFakeRedis()
	p := NewRedisPublisher(fake, "", "")
	n := domain.FacilityEventNotification{
		EventID:   "e1",
		EventType: domain.EventEnter,
		Vehicle:   domain.VehicleInfo{ID: "A001AA"},
		Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Available: 9,
		Capacity:  10,
	}

	require.NoError(t, p.Deliver(context.Background(), n))

	require.Len(t, fake.published[DefaultChannel], 1)
	var got domain.FacilityEventNotification
	require.NoError(t, json.Unmarshal([]byte(fake.published[DefaultChannel][0]), &got))
	assert.Equal(t, "A001AA", got.Vehicle.ID)

	hash := fake.hashes[DefaultSnapshotKey]
	assert.Contains(t, hash, "available")
	assert.Contains(t, hash, 9)
}

func TestRedisPublisher_PublishError(t *testing.T) {
	fake := newFakeRedis()
	fake.publishErr = errors.New("connection refused")
	p := NewRedisPublisher(fake, "events", "snap")

	err := p.Deliver(context.Background(), domain.FacilityEventNotification{})
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "redis", p.Name())
}
