package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/go-resty/resty/v2"
)

// Ollama calls a local Ollama server's generate endpoint.
type Ollama struct {
	http  *resty.Client
	model string
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// NewOllama builds an Ollama client from cfg. A Gemini model name falls back
// to DefaultOllamaModel.
func NewOllama(cfg *config.Config) *Ollama {
	base := cfg.LLMBaseURL
	if base == "" {
		base = DefaultOllamaURL
	}
	model := cfg.LLMModel
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = DefaultOllamaModel
	}
	return &Ollama{http: newRestClient(base, cfg), model: model}
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	var out ollamaResponse
	res, err := o.http.R().
		SetContext(ctx).
		SetBody(ollamaRequest{
			Model:   o.model,
			Prompt:  prompt,
			Stream:  false,
			Options: map[string]any{"temperature": 0},
		}).
		SetResult(&out).
		SetError(&out).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	if res.IsError() {
		body := out.Error
		if body == "" {
			body = truncateBody(res.Body())
		}
		return "", &StatusError{Provider: "ollama", Status: res.StatusCode(), Body: body}
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", ErrEmptyResponse
	}
	return out.Response, nil
}
