package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient("")
	assert.Error(t, err)
}

func TestRedisQueue_ReserveAck(t *testing.T) {
	mr, client := newTestRedis(t)
	q := NewRedisQueue(client)
	ctx := context.Background()

	_, err := q.Reserve(ctx, time.Minute)
	assert.True(t, errors.Is(err, redis.Nil))

	require.NoError(t, q.Enqueue(ctx, "first"))
	require.NoError(t, q.Enqueue(ctx, "second"))

	v, err := q.Reserve(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.True(t, mr.Exists(RosterProcessingKey))

	require.NoError(t, q.Ack(ctx, v))
	n, err := client.ZCard(ctx, RosterProcessingKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisQueue_RequeueExpired(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job"))
	_, err := q.Reserve(ctx, time.Second)
	require.NoError(t, err)

	moved, err := q.RequeueExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, moved)

	moved, err = q.RequeueExpired(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"job"}, moved)

	v, err := q.Reserve(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "job", v)
}

func TestQueueEventPublisher_Consumer(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client)
	ctx := context.Background()

	pub := NewQueueEventPublisher(q)
	require.NoError(t, pub.Publish(ctx, NewRosterEvent(RosterActionSignup, "Chess Club", "new@x.edu", "ms.lee")))
	require.NoError(t, q.Enqueue(ctx, "{broken"))

	var seen []RosterEvent
	consumer := NewRosterConsumer(q, func(_ context.Context, ev RosterEvent) error {
		seen = append(seen, ev)
		return nil
	}, nil)

	got, err := consumer.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, got)
	require.Len(t, seen, 1)
	assert.Equal(t, RosterActionSignup, seen[0].Action)
	assert.Equal(t, "Chess Club", seen[0].Activity)
	assert.Equal(t, "new@x.edu", seen[0].Email)
	assert.Equal(t, "ms.lee", seen[0].Teacher)
	assert.NotEmpty(t, seen[0].ID)

	// malformed payload is acked and dropped
	got, err = consumer.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Len(t, seen, 1)

	got, err = consumer.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, got)

	m, err := NewMetricsService(client).Queue(ctx)
	require.NoError(t, err)
	assert.Equal(t, QueueMetrics{}, m)
}

func TestRosterConsumer_HandlerFailureKeepsReservation(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client)
	ctx := context.Background()

	require.NoError(t, NewQueueEventPublisher(q).Publish(ctx, NewRosterEvent(RosterActionUnregister, "Art Club", "a@x.edu", "ms.lee")))
	consumer := NewRosterConsumer(q, func(context.Context, RosterEvent) error {
		return errors.New("downstream unavailable")
	}, nil)

	got, err := consumer.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	m, err := NewMetricsService(client).Queue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Pending)
	assert.Equal(t, int64(1), m.Processing)
}

func TestRosterConsumer_RunStopsOnCancel(t *testing.T) {
	_, client := newTestRedis(t)
	q := NewRedisQueue(client)

	handled := make(chan RosterEvent, 1)
	consumer := NewRosterConsumer(q, func(_ context.Context, ev RosterEvent) error {
		handled <- ev
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		consumer.Run(ctx)
		close(done)
	}()

	require.NoError(t, NewQueueEventPublisher(q).Publish(context.Background(), NewRosterEvent(RosterActionSignup, "Math Club", "m@x.edu", "ms.lee")))
	select {
	case ev := <-handled:
		assert.Equal(t, "Math Club", ev.Activity)
	case <-time.After(5 * time.Second):
		t.Fatal("event not consumed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
