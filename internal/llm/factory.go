package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options selects a provider and the middleware chain around it.
type Options struct {
	Provider    string // gemini | openai | groq | fake
	Model       string
	APIKey      string
	BaseURL     string
	RPS         float64
	Burst       int
	MaxAttempts int
	CacheSize   int
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// New builds the provider client and wraps it as
// logging -> cache -> retry -> rate limit -> provider.
func New(ctx context.Context, o Options) (LLMClient, error) {
	var base LLMClient
	switch strings.ToLower(strings.TrimSpace(o.Provider)) {
	case "", "gemini":
		g, err := NewGeminiClient(ctx, o.APIKey, o.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		base = g
	case "openai":
		base = NewChatClient(o.APIKey, o.Model, o.BaseURL)
	case "groq":
		url := o.BaseURL
		if url == "" {
			url = GroqBaseURL
		}
		model := o.Model
		if model == "" {
			model = "llama-3.3-70b-versatile"
		}
		base = NewChatClient(o.APIKey, model, url)
	case "fake":
		base = NewFakeClient()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", o.Provider)
	}
	return Wrap(base,
		WithLogging(o.Logger),
		Cached(o.CacheSize, o.CacheTTL),
		Retry(o.MaxAttempts, 0),
		RateLimit(o.RPS, o.Burst, o.Logger),
	), nil
}
