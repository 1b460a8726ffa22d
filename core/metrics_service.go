package core

import (
	"context"
	"fmt"
	"time"
)

// QueueMetrics describes the roster event queue.
type QueueMetrics struct {
	Pending          int64 `json:"pending"`
	Processing       int64 `json:"processing"`
	ExpiredCandidate int64 `json:"expired_candidate"`
}

// MetricsService reads roster queue depth from Redis.
type MetricsService struct {
	redis RedisQueueReader
}

func NewMetricsService(redis RedisQueueReader) *MetricsService {
	return &MetricsService{redis: redis}
}

// Queue returns pending/processing counts and how many reservations already expired.
func (s *MetricsService) Queue(ctx context.Context) (QueueMetrics, error) {
	now := time.Now().UnixMilli()
	pending, err := s.redis.LLen(ctx, RosterPendingKey).Result()
	if err != nil {
		return QueueMetrics{}, err
	}
	processing, err := s.redis.ZCard(ctx, RosterProcessingKey).Result()
	if err != nil {
		return QueueMetrics{}, err
	}
	expired, err := s.redis.ZCount(ctx, RosterProcessingKey, "-inf", fmt.Sprintf("%d", now)).Result()
	if err != nil {
		return QueueMetrics{}, err
	}
	return QueueMetrics{Pending: pending, Processing: processing, ExpiredCandidate: expired}, nil
}
