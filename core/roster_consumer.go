package core

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RosterEventHandler processes one decoded roster event.
type RosterEventHandler func(ctx context.Context, ev RosterEvent) error

// RosterConsumer drains the roster event queue. An event is acked once handled;
// a handler error leaves it reserved so RequeueExpired hands it out again.
type RosterConsumer struct {
	queue      EventQueue
	handle     RosterEventHandler
	logger     *zap.Logger
	visibility time.Duration
	idleWait   time.Duration
}

func NewRosterConsumer(queue EventQueue, handle RosterEventHandler, logger *zap.Logger) *RosterConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterConsumer{
		queue:      queue,
		handle:     handle,
		logger:     logger,
		visibility: DefaultVisibilityTimeout,
		idleWait:   200 * time.Millisecond,
	}
}

// LogRosterEvent is the default handler: one structured log line per event,
// stamped with the consumer that handled it.
func LogRosterEvent(logger *zap.Logger, consumerID string) RosterEventHandler {
	return func(_ context.Context, ev RosterEvent) error {
		logger.Info("roster change",
			zap.String("consumer_id", consumerID),
			zap.String("event_id", ev.ID),
			zap.String("action", ev.Action),
			zap.String("activity", ev.Activity),
			zap.String("email", ev.Email),
			zap.String("teacher", ev.Teacher),
			zap.Time("occurred_at", ev.OccurredAt))
		return nil
	}
}

// ProcessOne reserves and handles a single event. It returns false when the queue was empty.
func (c *RosterConsumer) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := c.queue.Reserve(ctx, c.visibility)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	ev, err := DecodeRosterEvent(raw)
	if err != nil {
		// Undecodable payloads would be requeued forever; drop them.
		c.logger.Warn("dropping malformed roster event", zap.String("payload", raw), zap.Error(err))
		return true, c.queue.Ack(ctx, raw)
	}
	if err := c.handle(ctx, ev); err != nil {
		c.logger.Warn("roster event handler failed", zap.String("event_id", ev.ID), zap.Error(err))
		return true, nil
	}
	return true, c.queue.Ack(ctx, raw)
}

// Run processes events until ctx is cancelled.
func (c *RosterConsumer) Run(ctx context.Context) {
	for {
		got, err := c.ProcessOne(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.Error("roster queue error", zap.Error(err))
		}
		if got && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.idleWait):
		}
	}
}

// Reclaim periodically returns expired reservations to the pending list.
func (c *RosterConsumer) Reclaim(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events, err := c.queue.RequeueExpired(ctx, time.Now())
			if err != nil {
				c.logger.Error("requeue expired roster events", zap.Error(err))
				continue
			}
			if len(events) > 0 {
				c.logger.Info("requeued expired roster events", zap.Int("count", len(events)))
			}
		}
	}
}
