package app

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"hotel_advisor/internal/domain"
)

const mockFolder = "mock"

var mockTemplates = []domain.ReviewEntry{
	{Score: 4.5, Review: "Excellent hotel with great service"},
	{Score: 4.0, Review: "Good location and clean rooms"},
	{Score: 4.8, Review: "Amazing experience, highly recommended"},
	{Score: 3.5, Review: "Decent hotel but could be better"},
	{Score: 4.2, Review: "Nice stay overall"},
	{Score: 4.7, Review: "Perfect location and friendly staff"},
	{Score: 3.8, Review: "Good value for money"},
	{Score: 4.9, Review: "Outstanding service and beautiful rooms"},
	{Score: 3.2, Review: "Average hotel, nothing special"},
	{Score: 4.6, Review: "Great breakfast and comfortable beds"},
	{Score: 4.1, Review: "Clean and modern facilities"},
	{Score: 3.9, Review: "Good but overpriced"},
	{Score: 4.4, Review: "Nice pool and spa area"},
	{Score: 3.7, Review: "Decent stay, could improve breakfast"},
	{Score: 4.8, Review: "Fantastic views and excellent staff"},
	{Score: 4.3, Review: "Very clean and well maintained"},
	{Score: 3.6, Review: "Okay hotel, noisy at night"},
	{Score: 4.7, Review: "Lovely decor and great amenities"},
	{Score: 4.0, Review: "Good location near city center"},
	{Score: 3.4, Review: "Old building but functional"},
}

// MockReviews generates n demo reviews: templates cycled in order, score
// jittered by up to ±0.2 and kept within 1-5, dated within the year before now.
func MockReviews(n int, rng *rand.Rand, now time.Time) []domain.ReviewEntry {
	out := make([]domain.ReviewEntry, 0, n)
	for i := 0; i < n; i++ {
		t := mockTemplates[i%len(mockTemplates)]
		score := t.Score + (rng.Float64()-0.5)*0.4
		score = math.Round(math.Max(1, math.Min(5, score))*10) / 10
		age := time.Duration(rng.Int63n(int64(365 * 24 * time.Hour)))
		out = append(out, domain.ReviewEntry{
			Score:  score,
			Review: t.Review,
			Date:   now.Add(-age).Format("2006-01-02"),
		})
	}
	return out
}

// mockRows renders mock reviews in the scraper's CSV column layout so they
// go through the same mapping as real exports. Review ids depend on slug and
// position only, so re-ingesting a mock hotel replaces its reviews.
func mockRows(slug string, entries []domain.ReviewEntry) []map[string]any {
	rows := make([]map[string]any, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, map[string]any{
			"review_id":        fmt.Sprintf("mock-%s-%d", slug, i),
			"rating":           e.Score,
			"full_review":      e.Review,
			"review_post_date": e.Date,
		})
	}
	return rows
}
