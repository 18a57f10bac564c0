// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/adapters/observability"
	"hotel_advisor/internal/app"
	"hotel_advisor/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	R *app.RecommendationService
	Q *app.QueryService
}

type problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/health", h.health)
	s.mux.Post("/v1/recommendations", h.recommend)
	s.mux.Post("/v1/hotels/resolve", h.resolveHotel)
	s.mux.Get("/v1/hotels", h.listHotels)
	s.mux.Get("/v1/hotels/{slug}", h.getHotel)
	s.mux.Get("/v1/hotels/{slug}/reviews", h.listReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

// writeFallback signals that the caller should switch to its non-AI path.
func writeFallback(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Fallback: true})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers 304 when the client already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "OK",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"aiConfigured": h.R != nil && h.R.Configured(),
	})
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		observability.ObserveRecommendation("invalid")
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if err := req.check(); err != nil {
		observability.ObserveRecommendation("invalid")
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	res, err := h.R.Recommend(r.Context(), req.toApp())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotConfigured):
		observability.ObserveRecommendation("not_configured")
		writeFallback(w, http.StatusServiceUnavailable, "AI analysis unavailable", "no API key configured")
		return
	case errors.Is(err, domain.ErrTransport):
		observability.ObserveRecommendation("transport_error")
		log.Error().Err(err).Str("err_type", observability.LabelErr(errors.Unwrap(err))).Msg("recommendation call failed")
		writeFallback(w, http.StatusBadGateway, "AI analysis failed", err.Error())
		return
	case errors.Is(err, domain.ErrNotFound):
		observability.ObserveRecommendation("invalid")
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	case errors.Is(err, domain.ErrNoHotels):
		observability.ObserveRecommendation("invalid")
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	default:
		observability.ObserveRecommendation("transport_error")
		log.Error().Err(err).Msg("recommendation failed")
		writeFallback(w, http.StatusInternalServerError, "AI analysis failed", "internal error")
		return
	}

	if res.Success {
		observability.ObserveRecommendation("success")
	} else {
		observability.ObserveRecommendation("failed")
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) resolveHotel(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid URL", describeValidation(err).Error())
		return
	}
	ref, err := app.ParseBookingURL(req.URL)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid URL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}
	out, err := h.Q.ListHotels(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list hotels failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not list hotels")
		return
	}
	writeCached(w, r, map[string]any{"items": out})
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Q.GetHotel(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Msg("get hotel failed")
		}
		writeProblem(w, http.StatusNotFound, "Not Found", "hotel not found")
		return
	}
	writeCached(w, r, resp)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}

	// Newest first; aligns with DB index on (hotel_slug, review_date, id)
	page := domain.PageQuery{Limit: limit, Cursor: nil, Sort: "-review_date"}
	out, err := h.Q.ListReviews(r.Context(), chi.URLParam(r, "slug"), page)
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not found")
		return
	}
	writeCached(w, r, out)
}

func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > 200 {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return 0, false
	}
	return l, true
}
