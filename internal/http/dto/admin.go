package dto

import (
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/store"
)

type PromptRecordResponse struct {
	AgentName string `json:"agent_name"`
	Default   string `json:"default"`
	Current   string `json:"current"`
	IsCustom  bool   `json:"is_custom"`
}

func ToPromptRecordResponse(r domain.PromptRecord) PromptRecordResponse {
	return PromptRecordResponse{AgentName: r.AgentName, Default: r.Default, Current: r.Current, IsCustom: r.IsCustom()}
}

func ToPromptRecordResponses(rs []domain.PromptRecord) []PromptRecordResponse {
	out := make([]PromptRecordResponse, len(rs))
	for i, r := range rs {
		out[i] = ToPromptRecordResponse(r)
	}
	return out
}

type UpdatePromptRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type ReloadLLMRequest struct {
	Provider      string  `json:"provider" binding:"required"`
	Model         string  `json:"model"`
	Temperature   float64 `json:"temperature"`
	OpenAIAPIKey  string  `json:"openai_api_key,omitempty"`
	OpenAIBaseURL string  `json:"openai_base_url,omitempty"`
	GeminiAPIKey  string  `json:"gemini_api_key,omitempty"`
	GeminiBaseURL string  `json:"gemini_base_url,omitempty"`
	OllamaBaseURL string  `json:"ollama_base_url,omitempty"`
}

type LLMConfigResponse struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// LoggingConfigResponse is the body of GET/PUT /admin/logging-config.
type LoggingConfigResponse struct {
	Level string `json:"level"`
}

type UpdateLoggingConfigRequest struct {
	Level string `json:"level" binding:"required"`
}

// TestLLMResponse is the body of POST /admin/test-llm.
type TestLLMResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Reply    string `json:"reply"`
}

type ExcludedItemResponse struct {
	ItemID string `json:"item_id"`
	Kind   string `json:"kind"`
	Source string `json:"source"`
}

func ToExcludedItemResponses(items []domain.ExcludedItem) []ExcludedItemResponse {
	out := make([]ExcludedItemResponse, len(items))
	for i, it := range items {
		out[i] = ExcludedItemResponse{ItemID: it.ItemID, Kind: it.Kind, Source: it.Source}
	}
	return out
}

type CategoryMetricsResponse struct {
	Returned int     `json:"returned"`
	Excluded int     `json:"excluded"`
	Accuracy float64 `json:"accuracy"`
}

type AccuracyResponse struct {
	Categories map[string]CategoryMetricsResponse `json:"categories"`
	Overall    float64                            `json:"overall"`
}

func ToAccuracyResponse(categories map[string]store.CategoryMetrics, overall float64) AccuracyResponse {
	out := make(map[string]CategoryMetricsResponse, len(categories))
	for cat, m := range categories {
		out[cat] = CategoryMetricsResponse{Returned: m.Returned, Excluded: m.Excluded, Accuracy: m.Accuracy}
	}
	return AccuracyResponse{Categories: out, Overall: overall}
}

type PromptLogEntryResponse struct {
	ID             int64                `json:"id,string"`
	Timestamp      string               `json:"timestamp"`
	IncidentID     string               `json:"incident_id"`
	PromptType     string               `json:"prompt_type"`
	SystemPrompt   string               `json:"system_prompt"`
	UserMessage    string               `json:"user_message"`
	ContextSummary string               `json:"context_summary"`
	History        []domain.ChatMessage `json:"history,omitempty"`
}

func ToPromptLogEntryResponses(entries []domain.PromptLogEntry) []PromptLogEntryResponse {
	out := make([]PromptLogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = PromptLogEntryResponse{
			ID:             e.ID,
			Timestamp:      e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			IncidentID:     e.IncidentID,
			PromptType:     string(e.PromptType),
			SystemPrompt:   e.SystemPrompt,
			UserMessage:    e.UserMessage,
			ContextSummary: e.ContextSummary,
			History:        e.ConversationHistory,
		}
	}
	return out
}
