package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiClient struct {
	client      openai.Client
	model       string
	temperature float64
}

func newOpenAIClient(cfg Config) (Client, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openaiClient{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *openaiClient) Provider() string { return "openai" }
func (c *openaiClient) Model() string    { return c.model }

func (c *openaiClient) params(system string, messages []Message) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		Temperature: openai.Float(c.temperature),
	}
}

func (c *openaiClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	params := c.params(system, messages)

	var content string
	err := withRetry(ctx, func() error {
		start := time.Now()
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return fmt.Errorf("openai complete: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("openai complete: no choices in response")
		}
		slog.DebugContext(ctx, "llm complete", "provider", "openai", "model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

func (c *openaiClient) Stream(ctx context.Context, system string, messages []Message) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	params := c.params(system, messages)

	go func() {
		defer close(tokens)
		defer close(errs)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case tokens <- delta:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && err != io.EOF {
			errs <- fmt.Errorf("openai stream: %w", err)
		}
	}()

	return tokens, errs
}
