// internal/adapters/openai/client.go
package openai

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"hotel_advisor/internal/adapters/observability"
	"hotel_advisor/internal/domain"
)

const provider = "openai"

var ErrNoChoices = errors.New("openai: response has no choices")

// Client implements domain.LLMClient with one chat completion per call.
// It never retries; the limiter only spaces out concurrent callers.
type Client struct {
	api   *goopenai.Client
	model string
	rl    *rate.Limiter
}

type Options struct {
	APIKey  string
	BaseURL string // e.g. https://api.openai.com/v1
	Model   string
	RPS     int
	Timeout time.Duration
}

func New(o Options) *Client {
	if o.RPS <= 0 {
		o.RPS = 3
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.Model == "" {
		o.Model = goopenai.GPT4oMini
	}
	cfg := goopenai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: o.Timeout}
	return &Client{
		api:   goopenai.NewClientWithConfig(cfg),
		model: o.Model,
		rl:    rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
	}
}

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", &domain.TransportError{Provider: provider, Err: err}
	}

	// the request field is omitempty, so an exact zero would fall back to the API default
	temp := req.Temperature
	if temp == 0 {
		temp = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temp,
	})
	status := statusOf(err)
	observability.ObserveExternal(provider, "chat.completions", status, time.Since(start))
	if err != nil {
		return "", &domain.TransportError{Provider: provider, Status: status, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.TransportError{Provider: provider, Status: status, Err: ErrNoChoices}
	}
	return resp.Choices[0].Message.Content, nil
}

// statusOf extracts the HTTP status of an API error; 200 when err is nil,
// 0 when no response was received.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
