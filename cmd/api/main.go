package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pharmatrack/pharmacy-api/internal/api"
	"github.com/pharmatrack/pharmacy-api/internal/infrastructure/config"
	mongodb "github.com/pharmatrack/pharmacy-api/internal/infrastructure/db/mongo"
	redisdb "github.com/pharmatrack/pharmacy-api/internal/infrastructure/db/redis"
	"github.com/pharmatrack/pharmacy-api/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Mongo and Redis are optional outside production; without them the
	// service runs on its in-memory user store and login throttle.
	var db *mongo.Database
	var mongoClient *mongo.Client
	mongoClient, db, err = mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		log.Warn().Err(err).Msg("mongo unavailable, using in-memory user store")
		db = nil
	} else {
		repo := mongodb.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("mongo index setup failed")
		}
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}

	var rdb *redis.Client
	rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		if cfg.Env == "production" {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Warn().Err(err).Msg("redis unavailable, using in-memory login throttle")
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e := api.NewRouter(cfg, db, rdb, log)
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth service listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
