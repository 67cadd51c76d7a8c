package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config captures everything the server needs from the environment so main
// stays lean. Optional subsystems (Postgres, Redis, Kafka) are enabled by the
// presence of their URL; absent, the in-memory implementations serve.
type Config struct {
	Addr string

	// DatabaseURL enables the Postgres stores when set.
	DatabaseURL string

	Redis  RedisConfig
	Kafka  KafkaConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Course CourseConfig
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	// Brokers enables the Kafka audit sink when non-empty.
	Brokers    []string
	AuditTopic string
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
}

type AuthConfig struct {
	// BcryptCost is the hash cost factor. Kept configurable so tests can run
	// at MinCost while production uses the default.
	BcryptCost int

	// GatewaySecret authenticates the payment gateway's confirm callback.
	GatewaySecret string

	// LockoutThreshold failed logins within LockoutWindow block further
	// attempts for the remainder of the window.
	LockoutThreshold int
	LockoutWindow    time.Duration
}

type CourseConfig struct {
	// DefaultRequiredDocuments applies to courses that declare no required
	// document types of their own.
	DefaultRequiredDocuments []string
}

// FromEnv builds a Config from environment variables with working defaults
// for local development.
func FromEnv() Config {
	return Config{
		Addr:        envOr("ADMISSIO_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("KAFKA_AUDIT_TOPIC", "admissio.audit"),
		},
		JWT: JWTConfig{
			// Default is for development only; override in production.
			SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envOr("JWT_ISSUER", "admissio"),
			Audience:   envOr("JWT_AUDIENCE", "admissio-api"),
			TokenTTL:   envDurationOr("JWT_TOKEN_TTL", time.Hour),
		},
		Auth: AuthConfig{
			BcryptCost:       envIntOr("BCRYPT_COST", bcrypt.DefaultCost),
			GatewaySecret:    envOr("GATEWAY_SHARED_SECRET", "dev-gateway-secret"),
			LockoutThreshold: envIntOr("LOGIN_LOCKOUT_THRESHOLD", 10),
			LockoutWindow:    envDurationOr("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		},
		Course: CourseConfig{
			DefaultRequiredDocuments: splitNonEmpty(envOr(
				"DEFAULT_REQUIRED_DOCUMENTS", "transcript,identity_proof,photo")),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
