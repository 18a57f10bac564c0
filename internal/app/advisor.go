package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_advisor/internal/domain"
)

// PlaceholderAPIKey is the documented value shipped in sample configs.
const PlaceholderAPIKey = "your-openai-api-key-here"

const (
	defaultMaxTokens   = 1500
	defaultTemperature = 0.7
)

type AdvisorOptions struct {
	APIKey    string
	MaxTokens int
	// Temperature nil or negative means 0.7; zero is a valid setting.
	Temperature *float32
}

// Advisor runs one prompt build, one completion and one interpretation per
// call. It holds no per-request state and is safe for concurrent use.
type Advisor struct {
	llm         domain.LLMClient
	opts        AdvisorOptions
	temperature float32
}

func NewAdvisor(llm domain.LLMClient, opts AdvisorOptions) *Advisor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	temp := float32(defaultTemperature)
	if opts.Temperature != nil && *opts.Temperature >= 0 {
		temp = *opts.Temperature
	}
	return &Advisor{llm: llm, opts: opts, temperature: temp}
}

// IsConfigured reports whether a usable credential was supplied.
func (a *Advisor) IsConfigured() bool {
	key := strings.TrimSpace(a.opts.APIKey)
	return a.llm != nil && key != "" && key != PlaceholderAPIKey
}

// Recommend returns domain.ErrNotConfigured without calling the model when
// no credential is present, and a *domain.TransportError when the call
// itself fails. A reply that cannot be structured is not an error: it comes
// back as a result with Success=false.
func (a *Advisor) Recommend(ctx context.Context, hotels []domain.HotelSummary, criteria domain.UserCriteria) (domain.RecommendationResult, error) {
	if len(hotels) == 0 {
		return domain.RecommendationResult{}, domain.ErrNoHotels
	}
	if !a.IsConfigured() {
		return domain.RecommendationResult{}, domain.ErrNotConfigured
	}

	prompt, err := BuildPrompt(hotels, criteria)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	names := make([]string, 0, len(hotels))
	for _, h := range hotels {
		names = append(names, h.Name)
	}
	log.Info().
		Strs("hotels", names).
		Bool("criteria", !criteria.IsEmpty()).
		Int("prompt_bytes", len(prompt)).
		Msg("requesting hotel analysis")

	start := time.Now()
	raw, err := a.llm.Complete(ctx, domain.CompletionRequest{
		System:      SystemPersona,
		User:        prompt,
		MaxTokens:   a.opts.MaxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		var te *domain.TransportError
		if !errors.As(err, &te) {
			err = &domain.TransportError{Provider: "llm", Err: err}
		}
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("llm call failed")
		return domain.RecommendationResult{}, err
	}

	res := InterpretResponse(raw, hotels)
	log.Info().
		Bool("success", res.Success).
		Int("top_choice", res.TopChoice).
		Dur("duration", time.Since(start)).
		Msg("hotel analysis completed")
	return res, nil
}
