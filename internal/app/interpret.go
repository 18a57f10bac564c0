package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/domain"
)

const (
	defaultRecommendation      = "Recommendation based on the analysis of guest reviews"
	unstructuredRecommendation = "AI analysis is available but the response format was unexpected"
)

// payload mirrors the schema requested by BuildPrompt. Each field is
// optional but at least one must be present; defaults are applied field by
// field in decodePayload:
//
//	recommendation  non-empty string, else defaultRecommendation
//	topChoice       1-based ordinal (number or numeric string), absent/null -> 0,
//	                out of range -> 0, anything non-numeric is an error
//	analysis        object, else empty Analysis
//	comparison      object of strings, non-string values dropped
type payload struct {
	Recommendation json.RawMessage `json:"recommendation"`
	TopChoice      json.RawMessage `json:"topChoice"`
	Analysis       json.RawMessage `json:"analysis"`
	Comparison     json.RawMessage `json:"comparison"`
}

// InterpretResponse maps raw model output onto a RecommendationResult. It
// never fails: text without a JSON object carrying at least one answer field
// is taken as the recommendation itself, and an object that cannot be
// decoded yields Success=false with the decode error attached. RawResponse
// is always the untouched input.
func InterpretResponse(raw string, hotels []domain.HotelSummary) (res domain.RecommendationResult) {
	defer func() {
		if r := recover(); r != nil {
			res = interpretationFailure(raw, fmt.Errorf("decode panic: %v", r))
		}
	}()

	candidates := jsonCandidates(raw)
	if len(candidates) == 0 {
		return plainTextResult(raw)
	}

	var firstErr error
	for _, c := range candidates {
		out, err := decodePayload(c, len(hotels))
		if err == nil {
			out.RawResponse = raw
			return out
		}
		if firstErr == nil && !errors.Is(err, errNoSchemaFields) {
			firstErr = err
		}
	}
	// only objects unrelated to the answer schema: the reply is prose
	if firstErr == nil {
		return plainTextResult(raw)
	}
	log.Warn().Err(firstErr).Int("candidates", len(candidates)).Msg("llm response could not be structured")
	return interpretationFailure(raw, firstErr)
}

func plainTextResult(raw string) domain.RecommendationResult {
	return domain.RecommendationResult{
		Success:        true,
		Recommendation: raw,
		TopChoice:      0,
		Comparison:     map[string]string{},
		RawResponse:    raw,
	}
}

func interpretationFailure(raw string, err error) domain.RecommendationResult {
	msg := "unknown decode error"
	if err != nil {
		msg = err.Error()
	}
	return domain.RecommendationResult{
		Success:        false,
		Recommendation: unstructuredRecommendation,
		TopChoice:      0,
		Comparison:     map[string]string{},
		RawResponse:    raw,
		Error:          msg,
	}
}

func decodePayload(candidate string, hotelCount int) (domain.RecommendationResult, error) {
	var p payload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return domain.RecommendationResult{}, err
	}
	if isAbsent(p.Recommendation) && isAbsent(p.TopChoice) && isAbsent(p.Analysis) && isAbsent(p.Comparison) {
		return domain.RecommendationResult{}, errNoSchemaFields
	}

	top, err := topChoiceIndex(p.TopChoice, hotelCount)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	rec := textValue(p.Recommendation)
	if strings.TrimSpace(rec) == "" {
		rec = defaultRecommendation
	}

	return domain.RecommendationResult{
		Success:        true,
		Recommendation: rec,
		TopChoice:      top,
		Analysis:       analysisValue(p.Analysis),
		Comparison:     comparisonValue(p.Comparison),
	}, nil
}

var (
	errTopChoice      = errors.New("topChoice is not a hotel number")
	errNoSchemaFields = errors.New("object has none of the answer fields")
)

// topChoiceIndex converts the 1-based ordinal of the payload to a valid
// zero-based index.
func topChoiceIndex(raw json.RawMessage, hotelCount int) (int, error) {
	if isAbsent(raw) {
		return 0, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %v", errTopChoice, err)
	}

	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, fmt.Errorf("%w: got %s", errTopChoice, string(raw))
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: got %q", errTopChoice, s)
	}
	if f < 1 || f > float64(hotelCount) {
		log.Warn().Float64("topChoice", f).Int("hotels", hotelCount).Msg("topChoice out of range, using first hotel")
		return 0, nil
	}
	return int(f) - 1, nil
}

func analysisValue(raw json.RawMessage) domain.Analysis {
	var fields map[string]json.RawMessage
	if isAbsent(raw) || json.Unmarshal(raw, &fields) != nil {
		return domain.Analysis{}
	}
	return domain.Analysis{
		Strengths:         stringList(fields["strengths"]),
		Considerations:    stringList(fields["considerations"]),
		BestFor:           textValue(fields["bestFor"]),
		SentimentAnalysis: textValue(fields["sentimentAnalysis"]),
		KeyWords:          stringList(fields["keyWords"]),
		RecentTrends:      textValue(fields["recentTrends"]),
	}
}

func comparisonValue(raw json.RawMessage) map[string]string {
	out := map[string]string{}
	var fields map[string]json.RawMessage
	if isAbsent(raw) || json.Unmarshal(raw, &fields) != nil {
		return out
	}
	for k, v := range fields {
		if s := textValue(v); s != "" {
			out[k] = s
		}
	}
	return out
}

// stringList accepts an array (string items kept) or a single string.
func stringList(raw json.RawMessage) []string {
	if isAbsent(raw) {
		return nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	if s := textValue(raw); s != "" {
		return []string{s}
	}
	return nil
}

func textValue(raw json.RawMessage) string {
	var s string
	if isAbsent(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
