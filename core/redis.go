package core

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Roster event queue keys and the default visibility timeout.
const (
	RosterPendingKey    = "roster_events:pending"
	RosterProcessingKey = "roster_events:processing"
	// DefaultVisibilityTimeout is how long a consumer may hold an event before it is requeued.
	DefaultVisibilityTimeout = 30 * time.Second
)

// EventQueue is the queue contract used by the API (producer) and rosterlog (consumer).
// Reserved items carry a visibility deadline so a crashed consumer does not lose them.
type EventQueue interface {
	Enqueue(ctx context.Context, value string) error
	Reserve(ctx context.Context, visibility time.Duration) (string, error)
	Ack(ctx context.Context, value string) error
	RequeueExpired(ctx context.Context, now time.Time) ([]string, error)
}

// RedisQueueReader exposes the read-only commands used for status reporting.
type RedisQueueReader interface {
	LLen(ctx context.Context, key string) *redis.IntCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	ZCount(ctx context.Context, key, min, max string) *redis.IntCmd
}

// NewRedisClient returns a configured go-redis client from URL (e.g., redis://localhost:6379/0).
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// RedisQueue is a list (pending) + sorted set (processing) queue.
type RedisQueue struct {
	client        *redis.Client
	pendingKey    string
	processingKey string
}

// NewRedisQueue wraps a redis.Client using the roster event keys.
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, pendingKey: RosterPendingKey, processingKey: RosterProcessingKey}
}

var reserveScript = redis.NewScript(`
local v = redis.call('RPOP', KEYS[1])
if v then
  redis.call('ZADD', KEYS[2], ARGV[1], v)
end
return v
`)

var requeueScript = redis.NewScript(`
local vals = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if #vals > 0 then
  redis.call('ZREM', KEYS[1], unpack(vals))
  redis.call('LPUSH', KEYS[2], unpack(vals))
end
return vals
`)

// Enqueue pushes a value to the head of the pending list.
func (q *RedisQueue) Enqueue(ctx context.Context, value string) error {
	return q.client.LPush(ctx, q.pendingKey, value).Err()
}

// Reserve pops the oldest pending value and parks it in processing until now+visibility.
// It returns redis.Nil when nothing is pending.
func (q *RedisQueue) Reserve(ctx context.Context, visibility time.Duration) (string, error) {
	deadline := float64(time.Now().Add(visibility).UnixMilli())
	res, err := reserveScript.Run(ctx, q.client, []string{q.pendingKey, q.processingKey}, deadline).Result()
	if err != nil {
		return "", err
	}
	s, ok := res.(string)
	if !ok {
		return "", errors.New("unexpected reserve response type")
	}
	return s, nil
}

// Ack drops a processed value.
func (q *RedisQueue) Ack(ctx context.Context, value string) error {
	return q.client.ZRem(ctx, q.processingKey, value).Err()
}

// RequeueExpired moves values whose visibility deadline passed back to pending.
func (q *RedisQueue) RequeueExpired(ctx context.Context, now time.Time) ([]string, error) {
	res, err := requeueScript.Run(ctx, q.client, []string{q.processingKey, q.pendingKey}, float64(now.UnixMilli())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	raw, ok := res.([]interface{})
	if !ok {
		return nil, errors.New("unexpected requeue response type")
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
