package domain

import "context"

type HotelRepository interface {
	// Write paths
	UpsertHotel(ctx context.Context, h Hotel) error
	UpsertReviews(ctx context.Context, rs []Review) error
	LogMiss(ctx context.Context, slug string, reason string) error

	// Read paths
	GetHotel(ctx context.Context, slug string) (Hotel, error)
	ListHotels(ctx context.Context, limit int) ([]Hotel, error)
	ListReviews(ctx context.Context, slug string, pg PageQuery) (ReviewsPage, error)
}

type RecommendationStore interface {
	SaveRecommendation(ctx context.Context, rec RecommendationRecord) error
}

// LLMClient performs exactly one chat completion per call.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// ReviewSource lists and reads scraper exports.
type ReviewSource interface {
	Hotels(ctx context.Context) ([]string, error)
	Latest(ctx context.Context, slug string) (ScrapeExport, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type ReviewsPage struct {
	Items      []Review
	NextCursor *string
}
