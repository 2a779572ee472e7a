package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// geminiClient talks to the Gemini generateContent/streamGenerateContent
// REST API directly. No pack repo imports a Gemini SDK, so net/http is the
// idiomatic choice here (see DESIGN.md).
type geminiClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	http        *http.Client
}

func newGeminiClient(cfg Config) (Client, error) {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := cfg.GeminiBaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &geminiClient{
		apiKey:      cfg.GeminiAPIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		http:        &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *geminiClient) Provider() string { return "gemini" }
func (c *geminiClient) Model() string    { return c.model }

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
}

func (c *geminiClient) buildRequest(system string, messages []Message) geminiRequest {
	req := geminiRequest{
		GenerationConfig: geminiGenConfig{Temperature: c.temperature},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	return req
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	body, err := json.Marshal(c.buildRequest(system, messages))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var text string
	err = withRetry(ctx, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return fmt.Errorf("gemini complete: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("gemini complete: status %d", resp.StatusCode)
		}

		var parsed geminiResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("gemini complete: decoding response: %w", err)
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("gemini complete: no candidates in response")
		}
		text = parsed.Candidates[0].Content.Parts[0].Text
		return nil
	})
	return text, err
}

// Stream uses streamGenerateContent?alt=sse, which frames each chunk as an
// SSE "data: {...}" line — the same framing this codebase's HTTP layer uses
// for its own chat endpoint, just consumed here instead of produced.
func (c *geminiClient) Stream(ctx context.Context, system string, messages []Message) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	body, err := json.Marshal(c.buildRequest(system, messages))
	if err != nil {
		errs <- err
		close(tokens)
		close(errs)
		return tokens, errs
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.model, c.apiKey)

	go func() {
		defer close(tokens)
		defer close(errs)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			errs <- err
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(httpReq)
		if err != nil {
			errs <- fmt.Errorf("gemini stream: %w", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			errs <- fmt.Errorf("gemini stream: status %d", resp.StatusCode)
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok || data == "" {
				continue
			}
			var chunk geminiResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
				continue
			}
			select {
			case tokens <- chunk.Candidates[0].Content.Parts[0].Text:
			case <-ctx.Done():
				return
			}
		}
	}()

	return tokens, errs
}
