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
	openaiAPIURL       = "https://api.openai.com/v1/chat/completions"
	openaiDefaultModel = "gpt-5-mini"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewOpenAI creates an OpenAI provider using the OPENAI_API_KEY env var.
func NewOpenAI() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return &OpenAIProvider{apiKey: key, apiURL: openaiAPIURL, client: &http.Client{}}, nil
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Chat(ctx context.Context, system string, msgs []Message, s Settings) (string, Usage, error) {
	model := s.Model
	if model == "" {
		model = openaiDefaultModel
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	// The system prompt rides as a developer message ahead of the conversation.
	messages := make([]openaiMessage, 0, len(msgs)+1)
	messages = append(messages, openaiMessage{Role: "developer", Content: system})
	for _, m := range msgs {
		messages = append(messages, openaiMessage{Role: string(m.Role), Content: m.Content})
	}

	reqBody := openaiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: s.Temperature,
		Messages:    messages,
	}
	if s.Seed != nil {
		reqBody.Seed = s.Seed
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	for attempt := 1; attempt <= defaultMaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(body))
		if err != nil {
			return "", Usage{}, fmt.Errorf("openai: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+o.apiKey)

		resp, err := o.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", Usage{}, fmt.Errorf("openai: request failed: %w", err)
			}
			if serr := sleepCtx(ctx, backoffDelay(attempt)); serr != nil {
				return "", Usage{}, serr
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", Usage{}, fmt.Errorf("openai: read response: %w", err)
		}

		if retryableStatus(resp.StatusCode) {
			if serr := sleepCtx(ctx, backoffDelay(attempt)); serr != nil {
				return "", Usage{}, serr
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", Usage{}, fmt.Errorf("openai: API returned %d: %s", resp.StatusCode, string(respBody))
		}

		var result openaiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return "", Usage{}, fmt.Errorf("openai: parse response: %w", err)
		}
		if len(result.Choices) == 0 {
			return "", Usage{}, fmt.Errorf("openai: no choices in response")
		}

		usage := Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
		return result.Choices[0].Message.Content, usage, nil
	}

	return "", Usage{}, fmt.Errorf("openai: exhausted %d attempts without success", defaultMaxAttempts)
}

type openaiRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_completion_tokens"`
	Temperature float64         `json:"temperature"`
	Seed        *int            `json:"seed,omitempty"`
	Messages    []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
