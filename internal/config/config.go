package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host            string
	Port            int
	LogLevel        string
	APIKey          string
	CORSOrigins     []string
	MaxUploadSizeMB int

	MaxConcurrent   int
	QueueTimeout    time.Duration
	AnalysisTimeout time.Duration

	StopwordsPath      string
	SystemPatternsPath string
	DateOrder          string
	TopicGap           time.Duration
	SampleTokenBudget  int
	SampleMaxChars     int
	MaxSummaryUsers    int

	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	NatsURL     string
	NatsToken   string
	DatabaseURL string
}

func Load() Config {
	return Config{
		Host:            envStr("BLOOP_HOST", "0.0.0.0"),
		Port:            envInt("BLOOP_PORT", 8000),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		APIKey:          envStr("BLOOP_API_KEY", ""),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		MaxUploadSizeMB: envInt("MAX_UPLOAD_SIZE_MB", 25),

		MaxConcurrent:   envInt("MAX_CONCURRENT_ANALYSES", 4),
		QueueTimeout:    envSeconds("QUEUE_TIMEOUT_SECONDS", 10),
		AnalysisTimeout: envSeconds("ANALYSIS_TIMEOUT_SECONDS", 120),

		StopwordsPath:      envStr("STOPWORDS_PATH", "data/stopwords.txt"),
		SystemPatternsPath: envStr("SYSTEM_PATTERNS_PATH", "data/system_message_patterns.json"),
		DateOrder:          envStr("DATE_ORDER", "auto"),
		TopicGap:           time.Duration(envFloat("TOPIC_GAP_HOURS", 6) * float64(time.Hour)),
		SampleTokenBudget:  envInt("SAMPLE_TOKEN_BUDGET", 1000),
		SampleMaxChars:     envInt("SAMPLE_MAX_CHARS", 600),
		MaxSummaryUsers:    envInt("MAX_SUMMARY_USERS", 10),

		GroqAPIKey:  envStr("GROQ_API_KEY", ""),
		GroqModel:   envStr("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		GroqBaseURL: envStr("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),

		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
