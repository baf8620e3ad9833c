package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hagwonhq/academy_backend_v1/internal/attendance"
	"github.com/hagwonhq/academy_backend_v1/internal/config"
	"github.com/hagwonhq/academy_backend_v1/internal/database"
	"github.com/hagwonhq/academy_backend_v1/internal/grader"
	"github.com/hagwonhq/academy_backend_v1/internal/homework"
	"github.com/hagwonhq/academy_backend_v1/internal/queue"
	"github.com/hagwonhq/academy_backend_v1/internal/routes"
	"github.com/hagwonhq/academy_backend_v1/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "server").Logger()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}
	if err := database.SeedAdmin(db, cfg); err != nil {
		logger.Fatal().Err(err).Msg("admin seed failed")
	}

	hubs := ws.NewHubs()
	go hubs.Feed.Run()
	go hubs.Student.Run()

	var q queue.Queue
	switch cfg.QueueBackend {
	case "memory":
		q = queue.NewInMemory(256)
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		q = queue.NewRedisQueue(rdb, cfg.GradingQueue)
	}

	attRepo := attendance.NewGormRepository(db)
	registry := attendance.NewRegistry(attRepo)
	attSvc := attendance.NewService(attRepo, registry)

	hwRepo := homework.NewGormRepository(db)
	hwSvc := homework.NewService(hwRepo, q, hubs.Student, logger)

	// With the in-memory queue there is no separate worker process, so the
	// grading processor runs embedded.
	if cfg.QueueBackend == "memory" {
		client := grader.New(cfg.GraderURL, cfg.GraderAPIKey, cfg.GraderSkip)
		proc := homework.NewProcessor(hwSvc, client, logger, cfg.GradingTimeout)
		go func() {
			if err := proc.Run(context.Background(), q); err != nil {
				logger.Error().Err(err).Msg("embedded grading processor exited")
			}
		}()
	}

	r := gin.Default()
	routes.Register(r, db, cfg, routes.Deps{
		Registry:   registry,
		Attendance: attSvc,
		Homework:   hwSvc,
		Hubs:       hubs,
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	logger.Info().Str("port", port).Msg("starting server")
	if err := r.Run(":" + port); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}
