package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	OpenAIKey      string
	OpenAIBase     string
	OpenAIModel    string
	LLMMaxTokens   int
	LLMTemperature float32
	LLMRPS         int
	LLMTimeout     time.Duration

	ScraperDir  string
	Workers     int
	ReviewCount int
	IngestMock  int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/advisor?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		OpenAIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBase:     env("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:    env("OPENAI_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   atoi("LLM_MAX_TOKENS", 1500),
		LLMTemperature: float32(atof("LLM_TEMPERATURE", 0.7)),
		LLMRPS:         atoi("LLM_RPS", 3),
		LLMTimeout:     time.Duration(atoi("LLM_TIMEOUT_SECONDS", 60)) * time.Second,

		ScraperDir:  env("SCRAPER_OUTPUT_DIR", "../booking-reviews-scraper/output"),
		Workers:     atoi("INGEST_WORKERS", 4),
		ReviewCount: atoi("INGEST_REVIEW_LIMIT", 100),
		IngestMock:  atoi("INGEST_MOCK", 0),
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
