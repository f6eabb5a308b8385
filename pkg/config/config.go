package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Replacement ReplacementConfig
	Game        GameConfig
	Session     SessionConfig
	Redis       RedisConfig
}

type AppConfig struct {
	Name        string `validate:"required"`
	Version     string
	Environment string `validate:"required"`
}

type ServerConfig struct {
	Port         string   `validate:"required,numeric"`
	AllowOrigins []string `validate:"dive,required"`
}

// ReplacementConfig points at the external round/scoring/feedback service.
type ReplacementConfig struct {
	BaseURL   string        `validate:"required,url"`
	Timeout   time.Duration `validate:"gt=0"`
	RateLimit float64       `validate:"gt=0"`
	RateBurst int           `validate:"gte=1"`
}

type GameConfig struct {
	ScoringConcurrency int           `validate:"gte=1,lte=64"`
	FeedbackQueueSize  int           `validate:"gte=1"`
	FeedbackWorkers    int           `validate:"gte=1,lte=32"`
	FeedbackTimeout    time.Duration `validate:"gt=0"`
}

type SessionConfig struct {
	Store         string        `validate:"oneof=memory redis"`
	TTL           time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Item Replacement Game"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			AllowOrigins: getList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
		Replacement: ReplacementConfig{
			BaseURL:   strings.TrimRight(getEnv("REPLACEMENT_API_URL", "http://localhost:8000"), "/"),
			Timeout:   getDuration("REPLACEMENT_API_TIMEOUT", 10*time.Second, &errs),
			RateLimit: getFloat("SCORING_RATE_LIMIT", 20, &errs),
			RateBurst: getInt("SCORING_RATE_BURST", 4, &errs),
		},
		Game: GameConfig{
			ScoringConcurrency: getInt("SCORING_CONCURRENCY", 4, &errs),
			FeedbackQueueSize:  getInt("FEEDBACK_QUEUE_SIZE", 64, &errs),
			FeedbackWorkers:    getInt("FEEDBACK_WORKERS", 2, &errs),
			FeedbackTimeout:    getDuration("FEEDBACK_TIMEOUT", 5*time.Second, &errs),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", "memory")),
			TTL:           getDuration("SESSION_TTL", 2*time.Hour, &errs),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute, &errs),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int, errs *[]error) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}

	return n
}

func getFloat(key string, defaultVal float64, errs *[]error) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}

	return f
}

func getDuration(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}

	return d
}

func getList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
