package app

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/domain"
)

/********** alias registries (single source of truth) **********/

// Column names seen in scraper CSV exports, most specific first.
var reviewAliases = map[string][]string{
	"author":    {"username", "user_name", "author", "name", "reviewer"},
	"title":     {"review_title", "title", "headline"},
	"text":      {"en_full_review", "full_review", "review_text", "review", "text", "comment"},
	"liked":     {"review_text_liked", "liked", "positive"},
	"disliked":  {"review_text_disliked", "disliked", "negative"},
	"lang":      {"original_lang", "lang", "language"},
	"date":      {"review_post_date", "review_date", "date", "created_at"},
	"source_id": {"review_id", "id"},
	"score":     {"rating", "score", "review_score", "average_score"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the trimmed string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) *string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return &s
		}
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// normalizeScore maps Booking's 0-10 scale onto 0-5; values already in
// range are kept, one decimal.
func normalizeScore(f float64) float64 {
	if f > 5 {
		f = f / 2
	}
	f = math.Max(0, math.Min(5, f))
	return math.Round(f*10) / 10
}

// humanizeSlug turns "asri-villas" into "Asri Villas".
func humanizeSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

/********** reviews mapper **********/

func mapReviews(slug string, in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		var rv domain.Review
		rv.HotelSlug = slug
		rv.Author = firstNonEmptyAlias(r, reviewAliases, "author")
		rv.Title = firstNonEmptyAlias(r, reviewAliases, "title")
		rv.Lang = firstNonEmptyAlias(r, reviewAliases, "lang")
		rv.ReviewDate = firstNonEmptyAlias(r, reviewAliases, "date")

		// Text -> fallback compose from liked/disliked.
		if s := firstNonEmptyAlias(r, reviewAliases, "text"); s != nil {
			rv.Text = s
		} else {
			liked := deref(firstNonEmptyAlias(r, reviewAliases, "liked"))
			disliked := deref(firstNonEmptyAlias(r, reviewAliases, "disliked"))
			var parts []string
			if liked != "" {
				parts = append(parts, "Liked: "+liked)
			}
			if disliked != "" {
				parts = append(parts, "Disliked: "+disliked)
			}
			rv.Text = ptrStr(strings.Join(parts, "\n"))
		}

		if f := getFloatFlexible(r, reviewAliases["score"]...); f != nil {
			n := normalizeScore(*f)
			rv.Score = &n
		}

		// SourceID -> prefer explicit; else synthesize stable hash.
		if s := firstNonEmptyAlias(r, reviewAliases, "source_id"); s != nil {
			rv.SourceID = s
		} else {
			score := ""
			if rv.Score != nil {
				score = fmt.Sprintf("%.1f", *rv.Score)
			}
			sig := strings.Join([]string{deref(rv.Author), deref(rv.Title), deref(rv.Text), deref(rv.ReviewDate), score}, "|")
			sum := sha1.Sum([]byte(sig))
			id := hex.EncodeToString(sum[:])
			rv.SourceID = &id
		}

		if raw, err := json.Marshal(r); err == nil {
			rv.RawJSON = raw
		} else {
			log.Error().Err(err).Str("context", "mapReviews").Msg("marshal review failed")
		}

		out = append(out, rv)
	}
	return out
}

/********** hotel mapper **********/

// mapHotel aggregates an export into the stored hotel: average score over
// every scored row, row count as total reviews, and the same key insights
// the web client shows next to a freshly scraped hotel.
func mapHotel(exp domain.ScrapeExport, reviews []domain.Review) domain.Hotel {
	h := domain.Hotel{
		Slug:         exp.Slug,
		Name:         humanizeSlug(exp.Slug),
		TotalReviews: len(exp.Rows),
	}

	var sum float64
	var n int
	for _, r := range reviews {
		if r.Score != nil {
			sum += *r.Score
			n++
		}
	}
	if n > 0 {
		avg := math.Round(sum/float64(n)*10) / 10
		h.Rating = &avg
	}

	h.KeyInsights = []string{fmt.Sprintf("%d reviews analyzed", h.TotalReviews)}
	if h.Rating != nil {
		h.KeyInsights = append(h.KeyInsights, fmt.Sprintf("Average score: %.1f/5", *h.Rating))
	}
	if exp.Folder == mockFolder {
		h.KeyInsights = append(h.KeyInsights, "Demo data (generated reviews)")
	} else {
		h.KeyInsights = append(h.KeyInsights, "Data from Booking.com scraper export "+exp.Folder)
	}
	return h
}
