// Package llm provides the text generation clients used for extraction.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3"
)

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client generates text for a prompt. Implementations run at temperature 0.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

func (f ClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// New builds the client selected by cfg.LLMProvider.
func New(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.LLMAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an api key (LLM_API_KEY or GEMINI_API_KEY)")
		}
		return NewGemini(cfg), nil
	case "ollama":
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d: %s", e.Provider, e.Status, e.Body)
}

func newRestClient(baseURL string, cfg *config.Config) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(cfg.LLMTimeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetRetryCount(cfg.LLMRetries)
	client.SetRetryWaitTime(cfg.RetryBackoff)
	client.SetRetryMaxWaitTime(cfg.RetryBackoffMax)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
	})
	client.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		slog.Debug("llm response",
			slog.String("url", r.Request.URL),
			slog.Int("status", r.StatusCode()),
			slog.Duration("elapsed", r.Time().Round(time.Millisecond)),
		)
		return nil
	})
	return client
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
