package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 32

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	KafkaBrokers []string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "portfolio-api"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:  EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL: EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RateLimitWindow: EnvDurationDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    EnvIntDefault("RATE_LIMIT_MAX", 5),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         EnvIntDefault("REDIS_DB", 0),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_PROJECT_INDEX", "projects"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     EnvDefault("ADMIN_NAME", "Administrator"),
	}
}

// MustValidate enforces the startup invariants: a signing secret with real
// entropy and an explicit, non-zero rate-limit window.
func (c Config) MustValidate() {
	if c.DatabaseURL == "" {
		log.Fatal("missing required env DATABASE_URL")
	}
	if len(c.JWTSecret) < minSecretLen {
		log.Fatalf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.RateLimitWindow <= 0 {
		log.Fatal("RATE_LIMIT_WINDOW must be a positive duration")
	}
	if c.RateLimitMax <= 0 {
		log.Fatal("RATE_LIMIT_MAX must be positive")
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
