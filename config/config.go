package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ServiceName             string
	ServicePort             string
	MetricsPort             string
	MongoDBConfig           MongoDBConfig
	KafkaConfig             KafkaConfig
	RedisConfig             RedisConfig
	TracingConfig           TracingConfig
	RatingReconcileInterval time.Duration
	// RatingReconcileGrace leaves products alone while their newest review
	// is younger than this; its increment may still be in flight.
	RatingReconcileGrace time.Duration
}

type MongoDBConfig struct {
	URI             string
	DBName          string
	UseTransactions bool
	Timeout         time.Duration
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
	PublishBackoff  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	CacheTTL time.Duration
}

type TracingConfig struct {
	CollectorHost string
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		ServiceName: "snowboard-review-service",
		ServicePort: getEnv("PORT", "8000"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		MongoDBConfig: MongoDBConfig{
			URI:             os.Getenv("DATABASE_URL"),
			DBName:          getEnv("DATABASE_NAME", "snowboard"),
			UseTransactions: getBool("DB_USE_TRANSACTIONS", false),
			Timeout:         getDuration("DB_TIMEOUT", 10*time.Second),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress:  os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:    getEnv("BROKER_TOPIC", "snowboard-events"),
			PublishBackoff: getDuration("PUBLISH_BACKOFF", time.Second),
		},
		RedisConfig: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			CacheTTL: getDuration("CACHE_TTL", 5*time.Minute),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		RatingReconcileInterval: getDuration("RATING_RECONCILE_INTERVAL", 10*time.Minute),
		RatingReconcileGrace:    getDuration("RATING_RECONCILE_GRACE", time.Minute),
	}

	brokerPartition, err := strconv.Atoi(getEnv("BROKER_PARTITION", "0"))
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Msg("invalid BROKER_PARTITION, using 0")
	}

	conf.KafkaConfig.BrokerPartition = brokerPartition

	return &conf
}

// DatabaseURLSet reports whether a store connection string was configured.
func (c *Config) DatabaseURLSet() bool {
	return c.MongoDBConfig.URI != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Str("key", key).Msg("invalid boolean, using default")
		return fallback
	}

	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Err(err).Str("component", "CreateNewConfig").Str("key", key).Msg("invalid duration, using default")
		return fallback
	}

	return d
}
