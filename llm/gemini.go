package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aluiziolira/school-scraper/config"
	"github.com/go-resty/resty/v2"
)

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	http  *resty.Client
	model string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// NewGemini builds a Gemini client from cfg.
func NewGemini(cfg *config.Config) *Gemini {
	base := cfg.LLMBaseURL
	if base == "" {
		base = DefaultGeminiURL
	}
	model := cfg.LLMModel
	if model == "" {
		model = DefaultGeminiModel
	}

	client := newRestClient(base, cfg)
	client.SetHeader("x-goog-api-key", cfg.LLMAPIKey)
	return &Gemini{http: client, model: model}
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	var body geminiRequest
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	body.GenerationConfig.Temperature = 0

	var out geminiResponse
	res, err := g.http.R().
		SetContext(ctx).
		SetPathParam("model", g.model).
		SetBody(body).
		SetResult(&out).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if res.IsError() {
		return "", &StatusError{Provider: "gemini", Status: res.StatusCode(), Body: truncateBody(res.Body())}
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini blocked prompt: %s", out.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
