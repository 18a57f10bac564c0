package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/domain"
)

type RecommendRequest struct {
	Hotels   []domain.HotelSummary
	HotelIDs []string // slugs resolved from the review store, appended after Hotels
	Criteria domain.UserCriteria
}

// HotelReader is satisfied by both the repository and the cached QueryService.
type HotelReader interface {
	GetHotel(ctx context.Context, slug string) (domain.Hotel, error)
	ListReviews(ctx context.Context, slug string, pg domain.PageQuery) (domain.ReviewsPage, error)
}

// RecommendationService wraps the Advisor with hotel resolution from the
// store, a result cache and the audit log. hotels, cache and audit may be nil.
type RecommendationService struct {
	advisor  *Advisor
	hotels   HotelReader
	cache    domain.Cache
	audit    domain.RecommendationStore
	model    string
	cacheTTL time.Duration
	now      func() time.Time
}

func NewRecommendationService(a *Advisor, r HotelReader, c domain.Cache, audit domain.RecommendationStore, model string, ttl time.Duration) *RecommendationService {
	return &RecommendationService{advisor: a, hotels: r, cache: c, audit: audit, model: model, cacheTTL: ttl, now: time.Now}
}

func (s *RecommendationService) Configured() bool { return s.advisor.IsConfigured() }

func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) (domain.RecommendationResult, error) {
	hotels, err := s.resolveHotels(ctx, req)
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	if len(hotels) == 0 {
		return domain.RecommendationResult{}, domain.ErrNoHotels
	}
	if !s.advisor.IsConfigured() {
		return domain.RecommendationResult{}, domain.ErrNotConfigured
	}

	key := s.cacheKey(hotels, req.Criteria)
	if s.cache != nil && key != "" {
		var cached domain.RecommendationResult
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			log.Debug().Str("key", key).Msg("recommendation served from cache")
			return cached, nil
		}
	}

	res, err := s.advisor.Recommend(ctx, hotels, req.Criteria)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	s.record(ctx, hotels, req.Criteria, res)

	// only structured answers are worth replaying
	if s.cache != nil && key != "" && res.Success {
		_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
	}
	return res, nil
}

func (s *RecommendationService) resolveHotels(ctx context.Context, req RecommendRequest) ([]domain.HotelSummary, error) {
	out := make([]domain.HotelSummary, 0, len(req.Hotels)+len(req.HotelIDs))
	out = append(out, req.Hotels...)
	if len(req.HotelIDs) == 0 {
		return out, nil
	}
	if s.hotels == nil {
		return nil, fmt.Errorf("hotel store unavailable: %w", domain.ErrNotFound)
	}
	for _, slug := range req.HotelIDs {
		h, err := s.hotels.GetHotel(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("hotel %q: %w", slug, err)
		}
		page, err := s.hotels.ListReviews(ctx, slug, domain.PageQuery{Limit: MaxSampleReviews, Sort: "-review_date"})
		if err != nil {
			return nil, fmt.Errorf("reviews for %q: %w", slug, err)
		}
		out = append(out, summaryFromStore(h, page.Items))
	}
	return out, nil
}

func summaryFromStore(h domain.Hotel, reviews []domain.Review) domain.HotelSummary {
	sum := domain.HotelSummary{
		Name:         h.Name,
		Location:     deref(h.Location),
		TotalReviews: h.TotalReviews,
		KeyInsights:  h.KeyInsights,
	}
	if h.Rating != nil {
		sum.Rating = *h.Rating
	}
	for _, r := range reviews {
		e := domain.ReviewEntry{Review: deref(r.Text), Date: deref(r.ReviewDate)}
		if r.Score != nil {
			e.Score = *r.Score
		}
		sum.Reviews = append(sum.Reviews, e)
	}
	return sum
}

// cacheKey hashes the model name with the resolved hotels and criteria.
func (s *RecommendationService) cacheKey(hotels []domain.HotelSummary, c domain.UserCriteria) string {
	b, err := json.Marshal(struct {
		Model    string                `json:"m"`
		Hotels   []domain.HotelSummary `json:"h"`
		Criteria domain.UserCriteria   `json:"c"`
	}{s.model, hotels, c})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal recommendation cache key")
		return ""
	}
	sum := sha1.Sum(b)
	return "reco:" + hex.EncodeToString(sum[:])
}

// record writes the audit row; failures are logged and never surfaced.
func (s *RecommendationService) record(ctx context.Context, hotels []domain.HotelSummary, c domain.UserCriteria, res domain.RecommendationResult) {
	if s.audit == nil {
		return
	}
	names := make([]string, 0, len(hotels))
	for _, h := range hotels {
		names = append(names, h.Name)
	}
	rec := domain.RecommendationRecord{
		ID:             uuid.NewString(),
		CreatedAt:      s.now().UTC(),
		Model:          s.model,
		Hotels:         names,
		Criteria:       c,
		Success:        res.Success,
		TopChoice:      res.TopChoice,
		Recommendation: res.Recommendation,
		RawResponse:    res.RawResponse,
		Error:          ptrStr(res.Error),
	}
	if err := s.audit.SaveRecommendation(ctx, rec); err != nil {
		log.Warn().Err(err).Str("id", rec.ID).Msg("failed to record recommendation")
	}
}
