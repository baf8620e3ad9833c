package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hagwonhq/academy_backend_v1/internal/config"
	"github.com/hagwonhq/academy_backend_v1/internal/database"
	"github.com/hagwonhq/academy_backend_v1/internal/grader"
	"github.com/hagwonhq/academy_backend_v1/internal/homework"
	"github.com/hagwonhq/academy_backend_v1/internal/queue"
)

// The worker drains the Redis grading queue. Run it alongside the server
// when QUEUE_BACKEND=redis; with the memory backend the server grades
// in-process and this binary is not needed.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "worker").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	}()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis connection failed")
	}
	q := queue.NewRedisQueue(rdb, cfg.GradingQueue)

	client := grader.New(cfg.GraderURL, cfg.GraderAPIKey, cfg.GraderSkip)
	if err := client.Health(ctx); err != nil {
		// Not fatal: the grader may come up after the worker.
		logger.Warn().Err(err).Msg("grader health check failed")
	}

	repo := homework.NewGormRepository(db)
	svc := homework.NewService(repo, nil, nil, logger)
	proc := homework.NewProcessor(svc, client, logger, cfg.GradingTimeout)

	if err := proc.Run(ctx, q); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("grading processor failed")
	}
	logger.Info().Msg("worker stopped")
}
