package main

import (
	"context"
	"database/sql"
	"flag"
	"math/rand"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_advisor/internal/adapters/observability"
	redisad "hotel_advisor/internal/adapters/redis"
	"hotel_advisor/internal/adapters/scraper"
	"hotel_advisor/internal/app"
	"hotel_advisor/internal/shared"
	mysqlrepo "hotel_advisor/internal/storage/mysql"
)

// Usage: ingestor [slug ...]
// Without arguments every hotel found in SCRAPER_OUTPUT_DIR is ingested.
// With INGEST_MOCK=<n> each given slug gets n generated reviews instead.
func main() {
	flag.Parse()
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("dir", cfg.ScraperDir).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Int("mock", cfg.IngestMock).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(scraper.NewDir(cfg.ScraperDir), repo, cache)

	slugs := make([]string, 0, flag.NArg())
	for _, a := range flag.Args() {
		if s := strings.ToLower(strings.TrimSpace(a)); s != "" {
			slugs = append(slugs, s)
		}
	}
	if len(slugs) == 0 {
		if cfg.IngestMock > 0 {
			log.Fatal().Msg("INGEST_MOCK needs hotel slugs as arguments")
		}
		if slugs, err = ing.Hotels(ctx); err != nil {
			log.Fatal().Err(err).Msg("list scraper exports failed")
		}
	}
	if len(slugs) == 0 {
		log.Warn().Str("dir", cfg.ScraperDir).Msg("nothing to ingest")
		return
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, slug := range slugs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(slug string, seed int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			var err error
			if cfg.IngestMock > 0 {
				// rand.Rand is not safe for concurrent use; one per worker
				rng := rand.New(rand.NewSource(seed))
				err = ing.IngestMock(ctx, slug, cfg.IngestMock, rng)
			} else {
				err = ing.IngestHotel(ctx, slug, cfg.ReviewCount)
			}
			if err != nil {
				log.Warn().Str("slug", slug).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("slug", slug).Msg("ingest ok")
		}(slug, time.Now().UnixNano()+int64(i))
	}

	wg.Wait()
	log.Info().Int("hotels", len(slugs)).Msg("ingestion completed")
}
