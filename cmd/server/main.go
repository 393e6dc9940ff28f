package main

import (
	"log"

	"fitquest.app/backend/internal/bootstrap"
	"fitquest.app/backend/internal/config"
	"fitquest.app/backend/internal/server"
	"fitquest.app/backend/pkg/database"
	"fitquest.app/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogLevel, cfg.LogPath); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		logger.L.Fatal("migration failed", zap.Error(err))
	}
	if cfg.AppEnv != "production" {
		if err := bootstrap.SeedDemoUser(db); err != nil {
			logger.L.Warn("demo user seed failed", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.L.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
	} else {
		logger.L.Warn("REDIS_URL not set, live notifications disabled")
	}

	srv := server.NewServer(db, redisClient)

	logger.L.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.L.Fatal("server stopped", zap.Error(err))
	}
}
