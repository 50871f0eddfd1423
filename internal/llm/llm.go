// Package llm defines the provider interface and implementations for chat
// interaction with a generative engine. Providers own transport concerns:
// retries, backoff, and token-usage extraction.
package llm

import "context"

// Role identifies who authored a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Settings configures the chat request.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Seed        *int
}

// Usage accounts tokens consumed by one or more calls.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.TotalTokens += o.TotalTokens
}

// Provider sends a system prompt plus conversation to an LLM and returns the
// assistant text with the tokens the call consumed.
type Provider interface {
	Chat(ctx context.Context, system string, msgs []Message, settings Settings) (string, Usage, error)
	Name() string
}

// Engine binds a provider to fixed settings for the duration of a run.
type Engine struct {
	Provider Provider
	Settings Settings
}

// Chat forwards to the underlying provider with the engine's settings.
func (e *Engine) Chat(ctx context.Context, system string, msgs []Message) (string, Usage, error) {
	return e.Provider.Chat(ctx, system, msgs, e.Settings)
}
