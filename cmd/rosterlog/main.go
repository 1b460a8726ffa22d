package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/core"
)

func main() {
	cfg := core.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logCloser, err := core.SetupLogging(cfg, "rosterlog.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	defer logger.Sync()

	redisClient, err := core.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	consumerID := core.NewConsumerID()
	queue := core.NewRedisQueue(redisClient)
	consumer := core.NewRosterConsumer(queue, core.LogRosterEvent(logger, consumerID), logger)

	logger.Info("rosterlog started",
		zap.String("consumer_id", consumerID),
		zap.String("queue", core.RosterPendingKey))

	go consumer.Reclaim(ctx, 15*time.Second)
	consumer.Run(ctx)
	logger.Info("rosterlog stopped")
}
