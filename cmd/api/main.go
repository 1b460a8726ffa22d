package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mergington-activities/core"
)

func main() {
	cfg := core.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	defer logger.Sync()

	var directory core.TeacherDirectory
	if cfg.TeacherDatabaseURL != "" {
		db, err := core.Connect(ctx, cfg.TeacherDatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close()
		if err := core.Migrate(ctx, db, cfg.MigrationsDir); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		pgDirectory := core.NewPgTeacherDirectory(db, logger)
		if err := core.BootstrapTeacher(ctx, pgDirectory, cfg, logger); err != nil {
			logger.Fatal("bootstrap teacher failed", zap.Error(err))
		}
		directory = pgDirectory
	} else {
		directory = core.NewFileTeacherDirectory(cfg.TeachersFile, logger)
	}

	catalog, err := core.LoadActivityCatalog(cfg.ActivitiesFile)
	if err != nil {
		logger.Fatal("failed to load activities", zap.Error(err))
	}
	registry := core.NewRegistry(catalog, core.WithCapacityEnforcement(cfg.EnforceCapacity))

	tokens, err := core.NewTokenService(cfg.SecretKey, cfg.TokenTTL, core.WithTokenIssuer(cfg.TokenIssuer))
	if err != nil {
		logger.Fatal("failed to create token service", zap.Error(err))
	}

	deps := core.RouterDeps{
		Logger:   logger,
		Auth:     core.NewDirectoryAuthService(directory, core.NewPasswordVerifier(cfg)),
		Tokens:   tokens,
		Registry: registry,
	}
	if cfg.RedisURL != "" {
		redisClient, err := core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		deps.Events = core.NewQueueEventPublisher(core.NewRedisQueue(redisClient))
		deps.Metrics = core.NewMetricsService(redisClient)
	}
	if cfg.AllowLegacyPasswords {
		logger.Warn("legacy placeholder passwords are accepted; do not run this in production")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           core.NewRouter(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting api server",
		zap.String("addr", srv.Addr),
		zap.Int("activities", len(catalog)),
		zap.Duration("token_ttl", tokens.TTL()),
		zap.Bool("enforce_capacity", cfg.EnforceCapacity))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
