package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/app"
	redisclient "github.com/alimikegami/snowboard-review-service/internal/infrastructure/cache/redis"
	circuitbreaker "github.com/alimikegami/snowboard-review-service/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/snowboard-review-service/internal/infrastructure/database/mongodb"
	"github.com/alimikegami/snowboard-review-service/internal/infrastructure/message-queue/kafka"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()
	a := app.App{Config: config}

	// Without a store the API still starts and reports itself degraded.
	if config.DatabaseURLSet() {
		ctx, cancel := context.WithTimeout(context.Background(), config.MongoDBConfig.Timeout)
		db, err := mongodb.ConnectToMongoDB(ctx, config.MongoDBConfig.URI, config.MongoDBConfig.DBName)
		if err != nil {
			log.Error().Err(err).Str("component", "main").Msg("database unavailable, starting degraded")
		} else {
			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				log.Warn().Err(err).Str("component", "main").Msg("")
			}
			a.DB = db
			defer db.Client().Disconnect(context.Background())
		}
		cancel()
	} else {
		log.Warn().Str("component", "main").Msg("DATABASE_URL not set, starting degraded")
	}

	if config.RedisConfig.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := redisclient.ConnectToRedis(ctx, config.RedisConfig.Addr, config.RedisConfig.Password)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("component", "main").Msg("product cache disabled")
		} else {
			a.Redis = client
			defer client.Close()
		}
	}

	if config.KafkaConfig.BrokerAddress != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		cb := circuitbreaker.CreateCircuitBreaker(config.ServiceName, 30*time.Second)
		producer, err := kafka.CreateKafkaProducer(ctx, config, cb)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("component", "main").Msg("event publishing disabled")
		} else {
			a.Producer = producer
			defer producer.Close()
		}
	}

	if err := a.Setup(); err != nil {
		log.Fatal().Err(err).Str("component", "main").Msg("")
	}

	stopped := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		if err := a.StopServer(); err != nil {
			log.Error().Err(err).Str("component", "main").Msg("shutdown")
		}
		close(stopped)
	}()

	if err := a.Start(); err != nil {
		log.Error().Err(err).Str("component", "main").Msg("server stopped")
		return
	}

	// pending events are flushed before the deferred producer close
	<-stopped
}
