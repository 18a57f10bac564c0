package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	server "hotel_advisor/internal/adapters/http_server"
	redisad "hotel_advisor/internal/adapters/redis"
	"hotel_advisor/internal/app"
	"hotel_advisor/internal/domain"
)

type memRepo struct {
	hotels  map[string]domain.Hotel
	reviews map[string][]domain.Review
	saved   int
}

func (m *memRepo) UpsertHotel(ctx context.Context, h domain.Hotel) error          { return nil }
func (m *memRepo) UpsertReviews(ctx context.Context, rs []domain.Review) error    { return nil }
func (m *memRepo) LogMiss(ctx context.Context, slug string, reason string) error { return nil }
func (m *memRepo) GetHotel(ctx context.Context, slug string) (domain.Hotel, error) {
	h, ok := m.hotels[slug]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}
func (m *memRepo) ListHotels(ctx context.Context, limit int) ([]domain.Hotel, error) {
	out := []domain.Hotel{}
	for _, h := range m.hotels {
		out = append(out, h)
	}
	return out, nil
}
func (m *memRepo) ListReviews(ctx context.Context, slug string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return domain.ReviewsPage{Items: m.reviews[slug]}, nil
}
func (m *memRepo) SaveRecommendation(ctx context.Context, rec domain.RecommendationRecord) error {
	m.saved++
	return nil
}

type stubLLM struct {
	reply string
	err   error
	calls int
	last  domain.CompletionRequest
}

func (s *stubLLM) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

func strp(s string) *string { return &s }

func newTestServer(t *testing.T, llm *stubLLM, apiKey string) (*httptest.Server, *memRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := &memRepo{
		hotels: map[string]domain.Hotel{
			"asri-villas": {Slug: "asri-villas", Name: "Asri Villas", TotalReviews: 1, KeyInsights: []string{"1 reviews analyzed"}},
		},
		reviews: map[string][]domain.Review{
			"asri-villas": {{HotelSlug: "asri-villas", Text: strp("Lovely"), ReviewDate: strp("2024-11-09")}},
		},
	}
	q := app.NewQueryService(repo, cache, time.Minute)
	advisor := app.NewAdvisor(llm, app.AdvisorOptions{APIKey: apiKey})
	reco := app.NewRecommendationService(advisor, q, cache, repo, "gpt-4o-mini", time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{R: reco, Q: q})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts, repo
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

const twoHotels = `{
  "hotels": [
    {"name": "Asri Villas", "location": "Bali", "rating": 4.2, "totalReviews": 2,
     "scrapedReviews": [{"score": 4.5, "review": "Great", "date": "2024-11-09"}]},
    {"name": "The Soko", "rating": 4.6, "totalReviews": 1,
     "reviews": [{"score": 5, "review": "Calm", "date": "2024-11-01"}]}
  ],
  "criteria": {"travelType": "romantic getaway"}
}`

func TestRecommend_OK(t *testing.T) {
	llm := &stubLLM{reply: `{"recommendation": "The Soko", "topChoice": 2, "comparison": {"hotel1": "a", "hotel2": "b"}}`}
	ts, repo := newTestServer(t, llm, "sk-test")

	resp, body := postJSON(t, ts.URL+"/v1/recommendations", twoHotels)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["topChoice"] != float64(1) || body["recommendation"] != "The Soko" {
		t.Fatalf("unexpected body %v", body)
	}
	if !strings.Contains(llm.last.User, `- 4.5/5: "Great" (2024-11-09)`) {
		t.Fatalf("scrapedReviews should reach the prompt")
	}
	if !strings.Contains(llm.last.User, "- Travel type: romantic getaway") {
		t.Fatalf("criteria should reach the prompt")
	}
	if repo.saved != 1 {
		t.Fatalf("expected one audit record, got %d", repo.saved)
	}
}

func TestRecommend_UnstructuredIs200(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{reply: `{"topChoice": "first"}`}, "sk-test")
	resp, body := postJSON(t, ts.URL+"/v1/recommendations", twoHotels)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != false || body["error"] == nil || body["rawResponse"] != `{"topChoice": "first"}` {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRecommend_NotConfigured(t *testing.T) {
	llm := &stubLLM{reply: "{}"}
	ts, _ := newTestServer(t, llm, app.PlaceholderAPIKey)
	resp, body := postJSON(t, ts.URL+"/v1/recommendations", twoHotels)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
	if body["fallback"] != true {
		t.Fatalf("expected fallback flag, got %v", body)
	}
	if llm.calls != 0 {
		t.Fatalf("no completion should be requested")
	}
}

func TestRecommend_TransportFailure(t *testing.T) {
	llm := &stubLLM{err: &domain.TransportError{Provider: "openai", Status: 401, Err: errors.New("bad key")}}
	ts, _ := newTestServer(t, llm, "sk-test")
	resp, body := postJSON(t, ts.URL+"/v1/recommendations", twoHotels)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if body["fallback"] != true {
		t.Fatalf("expected fallback flag, got %v", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestRecommend_Validation(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{}, "sk-test")
	cases := map[string]string{
		"no hotels":      `{"hotels": []}`,
		"missing name":   `{"hotels": [{"rating": 4}]}`,
		"blank name":     `{"hotels": [{"name": "   ", "rating": 4}]}`,
		"blank id":       `{"hotelIds": [" "]}`,
		"rating too big": `{"hotels": [{"name": "x", "rating": 9}]}`,
		"bad json":       `{"hotels": [`,
		"too many":       `{"hotelIds": ["a","b","c","d","e","f","g","h","i","j","k"]}`,
	}
	for name, body := range cases {
		resp, _ := postJSON(t, ts.URL+"/v1/recommendations", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}
}

func TestRecommend_StoredHotelIDs(t *testing.T) {
	llm := &stubLLM{reply: `{"topChoice": 1}`}
	ts, _ := newTestServer(t, llm, "sk-test")

	resp, _ := postJSON(t, ts.URL+"/v1/recommendations", `{"hotelIds": ["Asri-Villas"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(llm.last.User, "HOTEL 1: Asri Villas") || !strings.Contains(llm.last.User, `"Lovely"`) {
		t.Fatalf("stored hotel should reach the prompt:\n%s", llm.last.User)
	}

	resp, _ = postJSON(t, ts.URL+"/v1/recommendations", `{"hotelIds": ["ghost"]}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{}, "")
	resp, err := http.Get(ts.URL + "/v1/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "OK" || body["aiConfigured"] != false || body["timestamp"] == nil {
		t.Fatalf("unexpected health %v", body)
	}
}

func TestResolveHotel(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{}, "sk-test")
	resp, body := postJSON(t, ts.URL+"/v1/hotels/resolve", `{"url": "https://www.booking.com/hotel/id/asri-villas.fr.html"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["slug"] != "asri-villas" || body["name"] != "Asri Villas" || body["location"] != "Indonesia" {
		t.Fatalf("unexpected body %v", body)
	}

	resp, _ = postJSON(t, ts.URL+"/v1/hotels/resolve", `{"url": "https://example.com/hotel/fr/x.html"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetHotel_ETag(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{}, "sk-test")

	resp, err := http.Get(ts.URL + "/v1/hotels/asri-villas")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if resp.StatusCode != http.StatusOK || etag == "" {
		t.Fatalf("expected 200 with ETag, got %d %q", resp.StatusCode, etag)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/hotels/asri-villas", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/hotels/ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListReviews_Limit(t *testing.T) {
	ts, _ := newTestServer(t, &stubLLM{}, "sk-test")
	resp, err := http.Get(ts.URL + "/v1/hotels/asri-villas/reviews?limit=500")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/hotels/asri-villas/reviews?limit=10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var page struct {
		Items []map[string]any `json:"Items"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&page)
	if resp.StatusCode != http.StatusOK || len(page.Items) != 1 {
		t.Fatalf("unexpected reviews response %d %+v", resp.StatusCode, page)
	}
}
