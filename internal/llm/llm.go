// Package llm provides a provider-agnostic chat client: a blocking Complete
// for synthesis and a token-streaming Stream for follow-up chat, backed by
// OpenAI, Gemini, or Ollama. Grounded on the teacher's common/llm client
// interface and provider-factory shape, generalized from tool-calling agent
// turns to the plain complete/stream pair this domain needs — evidence
// gathering happens in the orchestrator, not in an LLM tool-calling loop.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Message is one turn in a chat conversation.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Client is the provider-agnostic capability set used throughout this package.
type Client interface {
	// Complete blocks until the full response is available (used for
	// synthesis, where the caller needs the whole resolution at once).
	Complete(ctx context.Context, system string, messages []Message) (string, error)

	// Stream yields response tokens on the returned channel as they arrive,
	// closing it when the response is complete or ctx is cancelled. A
	// mid-stream error is sent on the error channel before both close.
	Stream(ctx context.Context, system string, messages []Message) (<-chan string, <-chan error)

	Provider() string
	Model() string
}

// Config configures whichever provider is selected.
type Config struct {
	Provider    string // "openai" | "gemini" | "ollama"
	Model       string
	Temperature float64

	OpenAIAPIKey  string
	OpenAIBaseURL string

	GeminiAPIKey  string
	GeminiBaseURL string

	OllamaBaseURL string

	// BlockingTimeout bounds a Complete call; zero disables the timeout.
	BlockingTimeout time.Duration
	// StreamIdleTimeout bounds the gap between successive Stream chunks;
	// zero disables the watchdog.
	StreamIdleTimeout time.Duration
}

// New selects a Client variant from cfg.Provider.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg)
	case "gemini":
		return newGeminiClient(cfg)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
