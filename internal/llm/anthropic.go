package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicDefaultModel = "claude-sonnet-4-6"
	anthropicAPIVersion   = "2023-06-01"
)

// AnthropicProvider implements Provider using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewAnthropic creates an Anthropic provider using the ANTHROPIC_API_KEY env var.
func NewAnthropic() (*AnthropicProvider, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	return &AnthropicProvider{apiKey: key, apiURL: anthropicAPIURL, client: &http.Client{}}, nil
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) Chat(ctx context.Context, system string, msgs []Message, s Settings) (string, Usage, error) {
	model := s.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16384
	}

	messages := make([]anthropicMessage, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	reqBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: &s.Temperature,
		System:      system,
		Messages:    messages,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(body))
		if err != nil {
			return "", Usage{}, fmt.Errorf("anthropic: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", a.apiKey)
		req.Header.Set("Anthropic-Version", anthropicAPIVersion)

		resp, err := a.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", Usage{}, fmt.Errorf("anthropic: request failed: %w", err)
			}
			if serr := sleepCtx(ctx, backoffDelay(attempt)); serr != nil {
				return "", Usage{}, serr
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", Usage{}, fmt.Errorf("anthropic: read response: %w", err)
		}

		if retryableStatus(resp.StatusCode) {
			if serr := sleepCtx(ctx, backoffDelay(attempt)); serr != nil {
				return "", Usage{}, serr
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", Usage{}, fmt.Errorf("anthropic: API returned %d: %s", resp.StatusCode, string(respBody))
		}

		var result anthropicResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return "", Usage{}, fmt.Errorf("anthropic: parse response: %w", err)
		}

		usage := Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
		}
		for _, block := range result.Content {
			if block.Type == "text" {
				return block.Text, usage, nil
			}
		}
		return "", usage, fmt.Errorf("anthropic: no text content in response")
	}

	return "", Usage{}, fmt.Errorf("anthropic: exhausted %d attempts without success", defaultMaxAttempts)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
