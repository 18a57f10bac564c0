package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hotel_advisor/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	hotels  map[string]domain.Hotel
	reviews map[string][]domain.Review
	misses  map[string]string
	records []domain.RecommendationRecord
	saveErr error

	getCalls    int
	reviewCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		hotels:  map[string]domain.Hotel{},
		reviews: map[string][]domain.Review{},
		misses:  map[string]string{},
	}
}

func (f *fakeRepo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hotels[h.Slug] = h
	return nil
}

func (f *fakeRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rs {
		f.reviews[r.HotelSlug] = append(f.reviews[r.HotelSlug], r)
	}
	return nil
}

func (f *fakeRepo) LogMiss(ctx context.Context, slug string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.misses[slug] = reason
	return nil
}

func (f *fakeRepo) GetHotel(ctx context.Context, slug string) (domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	h, ok := f.hotels[slug]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeRepo) ListHotels(ctx context.Context, limit int) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Hotel, 0, len(f.hotels))
	for _, h := range f.hotels {
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, slug string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewCalls++
	items := f.reviews[slug]
	if pg.Limit > 0 && len(items) > pg.Limit {
		items = items[:pg.Limit]
	}
	return domain.ReviewsPage{Items: items}, nil
}

func (f *fakeRepo) SaveRecommendation(ctx context.Context, rec domain.RecommendationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, rec)
	return nil
}

// fakeCache stores JSON like the redis adapter so round trips are realistic.
type fakeCache struct {
	store map[string][]byte
	sets  int
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []domain.CompletionRequest
}

func (l *fakeLLM) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, req)
	return l.reply, l.err
}

func (l *fakeLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

type fakeSource struct {
	exports map[string]domain.ScrapeExport
}

func (s *fakeSource) Hotels(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(s.exports))
	for k := range s.exports {
		out = append(out, k)
	}
	return out, nil
}

func (s *fakeSource) Latest(ctx context.Context, slug string) (domain.ScrapeExport, error) {
	exp, ok := s.exports[slug]
	if !ok {
		return domain.ScrapeExport{}, fmt.Errorf("no export for %s: %w", slug, domain.ErrNotFound)
	}
	return exp, nil
}

func ptr[T any](v T) *T { return &v }

func threeHotels() []domain.HotelSummary {
	mk := func(name, loc string, rating float64) domain.HotelSummary {
		h := domain.HotelSummary{
			Name:         name,
			Location:     loc,
			Rating:       rating,
			TotalReviews: 5,
			KeyInsights:  []string{"5 reviews analyzed", "Real-time data from Booking.com"},
		}
		for i := 0; i < 5; i++ {
			h.Reviews = append(h.Reviews, domain.ReviewEntry{Score: 4.5, Review: name + " review", Date: "2024-11-09"})
		}
		return h
	}
	return []domain.HotelSummary{
		mk("Asri Villas", "Bali, Indonesia", 4.2),
		mk("The Soko", "Ubud, Indonesia", 4.6),
		mk("Casa Luna", "Seminyak, Indonesia", 3.9),
	}
}
