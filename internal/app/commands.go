package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/domain"
)

type IngestionService struct {
	source domain.ReviewSource
	repo   domain.HotelRepository
	cache  domain.Cache
}

func NewIngestionService(src domain.ReviewSource, r domain.HotelRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{source: src, repo: r, cache: cache}
}

// Hotels lists the slugs that have at least one export.
func (s *IngestionService) Hotels(ctx context.Context) ([]string, error) {
	return s.source.Hotels(ctx)
}

// IngestHotel loads the newest export of slug and stores the hotel plus at
// most reviewLimit of its reviews. Aggregates use every row of the export.
func (s *IngestionService) IngestHotel(ctx context.Context, slug string, reviewLimit int) error {
	exp, err := s.source.Latest(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.repo.LogMiss(ctx, slug, "no export")
			if s.cache != nil {
				s.invalidate(ctx, slug)
			}
			return nil
		}
		return err
	}
	if len(exp.Rows) == 0 {
		_ = s.repo.LogMiss(ctx, slug, "empty export")
		return nil
	}
	return s.store(ctx, exp, reviewLimit)
}

// IngestMock stores n generated reviews for slug; used for demos without
// scraper output.
func (s *IngestionService) IngestMock(ctx context.Context, slug string, n int, rng *rand.Rand) error {
	exp := domain.ScrapeExport{
		Slug:   slug,
		Folder: mockFolder,
		Rows:   mockRows(slug, MockReviews(n, rng, time.Now())),
	}
	return s.store(ctx, exp, n)
}

func (s *IngestionService) store(ctx context.Context, exp domain.ScrapeExport, reviewLimit int) error {
	reviews := mapReviews(exp.Slug, exp.Rows)
	hotel := mapHotel(exp, reviews)

	// Parent upsert first to satisfy FK for reviews.
	if err := s.repo.UpsertHotel(ctx, hotel); err != nil {
		return err
	}

	if reviewLimit > 0 && len(reviews) > reviewLimit {
		reviews = reviews[:reviewLimit]
	}
	if len(reviews) > 0 {
		if err := s.repo.UpsertReviews(ctx, reviews); err != nil {
			// IMPORTANT: do not swallow this; surface so we know inserts failed
			return fmt.Errorf("upsert reviews failed for %s: %w", exp.Slug, err)
		}
	}

	if s.cache != nil {
		s.invalidate(ctx, exp.Slug)
	}
	log.Debug().Str("slug", exp.Slug).Str("folder", exp.Folder).Int("reviews", len(reviews)).Msg("hotel stored")
	return nil
}

// invalidate drops the hotel view and the common review page variants.
func (s *IngestionService) invalidate(ctx context.Context, slug string) {
	_ = s.cache.Del(ctx, hotelKey(slug))
	for _, lim := range []int{MaxSampleReviews, 50, 100, 200} {
		_ = s.cache.Del(ctx, reviewsKey(slug, lim, "-review_date"))
	}
}
