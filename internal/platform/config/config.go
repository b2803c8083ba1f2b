package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process level configuration. Empty backends select the
// in-process alternative: no DATABASE_URL runs the in-memory store, no
// REDIS_URL limits locally, no KAFKA_BROKERS keeps events in the log.
type Server struct {
	Addr            string        `env:"PARTY_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ErrorMaxLength  int           `env:"ERROR_MAX_LENGTH" envDefault:"500"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Tracing   TracingConfig
}

type DatabaseConfig struct {
	URL          string        `env:"DATABASE_URL"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	TxTimeout    time.Duration `env:"DB_TX_TIMEOUT" envDefault:"5s"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"500ms"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"500ms"`
}

// RateLimitConfig bounds write requests per client IP. Zero disables limiting.
type RateLimitConfig struct {
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
}

type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_PARTY_TOPIC" envDefault:"party.events"`
	Partitions   int32         `env:"KAFKA_PARTY_TOPIC_PARTITIONS" envDefault:"3"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

// AuthConfig enables bearer-token auth on party routes when SigningKey is set.
type AuthConfig struct {
	SigningKey string `env:"AUTH_SIGNING_KEY"`
	Issuer     string `env:"AUTH_ISSUER" envDefault:"party"`
}

type TracingConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"party"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Server) Validate() error {
	if c.ErrorMaxLength <= 3 {
		return fmt.Errorf("ERROR_MAX_LENGTH must be greater than 3, got %d", c.ErrorMaxLength)
	}
	if c.RateLimit.PerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Kafka.BatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive")
	}
	return nil
}

func (c Server) UsePostgres() bool { return c.Database.URL != "" }
func (c Server) UseRedis() bool    { return c.Redis.URL != "" }
func (c Server) UseKafka() bool    { return len(c.Kafka.Brokers) > 0 }
func (c Server) AuthEnabled() bool { return c.Auth.SigningKey != "" }
