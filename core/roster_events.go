package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Roster actions recorded in events.
const (
	RosterActionSignup     = "signup"
	RosterActionUnregister = "unregister"
)

// RosterEvent describes one successful roster change.
type RosterEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	Teacher    string    `json:"teacher"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRosterEvent stamps an event with a fresh id and the current time.
func NewRosterEvent(action, activity, email, teacher string) RosterEvent {
	return RosterEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Activity:   activity,
		Email:      email,
		Teacher:    teacher,
		OccurredAt: time.Now().UTC(),
	}
}

// DecodeRosterEvent parses a queued event payload.
func DecodeRosterEvent(raw string) (RosterEvent, error) {
	var ev RosterEvent
	err := json.Unmarshal([]byte(raw), &ev)
	return ev, err
}

// RosterEventPublisher receives roster changes after they are applied.
type RosterEventPublisher interface {
	Publish(ctx context.Context, ev RosterEvent) error
}

// NoopEventPublisher drops events; used when no queue is configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, RosterEvent) error { return nil }

// QueueEventPublisher encodes events as JSON onto an EventQueue.
type QueueEventPublisher struct {
	queue EventQueue
}

func NewQueueEventPublisher(queue EventQueue) *QueueEventPublisher {
	return &QueueEventPublisher{queue: queue}
}

func (p *QueueEventPublisher) Publish(ctx context.Context, ev RosterEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.queue.Enqueue(ctx, string(data))
}

// publishRosterEvent never fails the request: the roster change already happened.
func publishRosterEvent(ctx context.Context, logger *zap.Logger, pub RosterEventPublisher, ev RosterEvent) {
	if err := pub.Publish(ctx, ev); err != nil {
		logger.Warn("roster event not published",
			zap.String("event_id", ev.ID),
			zap.String("activity", ev.Activity),
			zap.Error(err))
	}
}
