package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ollamaClient talks to a local Ollama server's /api/chat endpoint. Ollama
// has no SDK in this codebase's dependency lineage, so this is net/http
// directly, matching the Gemini variant.
type ollamaClient struct {
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
}

func newOllamaClient(cfg Config) (Client, error) {
	baseURL := cfg.OllamaBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}
	return &ollamaClient{
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (c *ollamaClient) Provider() string { return "ollama" }
func (c *ollamaClient) Model() string    { return c.model }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

func (c *ollamaClient) buildRequest(system string, messages []Message, stream bool) ollamaChatRequest {
	req := ollamaChatRequest{Model: c.model, Stream: stream}
	req.Options.Temperature = c.temperature
	if system != "" {
		req.Messages = append(req.Messages, ollamaMessage{Role: "system", Content: system})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	return req
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (c *ollamaClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	body, err := json.Marshal(c.buildRequest(system, messages, false))
	if err != nil {
		return "", err
	}

	var content string
	err = withRetry(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return fmt.Errorf("ollama complete: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("ollama complete: status %d", resp.StatusCode)
		}

		var parsed ollamaChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("ollama complete: decoding response: %w", err)
		}
		content = parsed.Message.Content
		return nil
	})
	return content, err
}

func (c *ollamaClient) Stream(ctx context.Context, system string, messages []Message) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	body, err := json.Marshal(c.buildRequest(system, messages, true))
	if err != nil {
		errs <- err
		close(tokens)
		close(errs)
		return tokens, errs
	}

	go func() {
		defer close(tokens)
		defer close(errs)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			errs <- err
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			errs <- fmt.Errorf("ollama stream: %w", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			errs <- fmt.Errorf("ollama stream: status %d", resp.StatusCode)
			return
		}

		// Ollama streams newline-delimited JSON objects, not SSE.
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Message.Content != "" {
				select {
				case tokens <- chunk.Message.Content:
				case <-ctx.Done():
					return
				}
			}
			if chunk.Done {
				return
			}
		}
	}()

	return tokens, errs
}
