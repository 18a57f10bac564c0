package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotel_advisor/internal/adapters/http_server"
	"hotel_advisor/internal/adapters/observability"
	"hotel_advisor/internal/adapters/openai"
	redisad "hotel_advisor/internal/adapters/redis"
	"hotel_advisor/internal/app"
	"hotel_advisor/internal/shared"
	mysqlrepo "hotel_advisor/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; serving without cache")
	}
	cancel()

	llm := openai.New(openai.Options{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBase,
		Model:   cfg.OpenAIModel,
		RPS:     cfg.LLMRPS,
		Timeout: cfg.LLMTimeout,
	})
	advisor := app.NewAdvisor(llm, app.AdvisorOptions{
		APIKey:      cfg.OpenAIKey,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: &cfg.LLMTemperature,
	})
	if !advisor.IsConfigured() {
		log.Warn().Msg("no usable OPENAI_API_KEY; recommendations will answer with fallback")
	}

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	reco := app.NewRecommendationService(advisor, q, cache, repo, llm.Model(), cfg.CacheTTL)

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{R: reco, Q: q})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("model", llm.Model()).
		Bool("ai_configured", advisor.IsConfigured()).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
