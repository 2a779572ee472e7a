package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/common/logger"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/http/dto"
	"smartrecover.dev/engine/internal/http/httperr"
	"smartrecover.dev/engine/internal/llm"
	"smartrecover.dev/engine/internal/store"
)

// AdminHandler covers prompt editing, LLM provider hot-swap, exclusion
// accuracy metrics, and the prompt-log read-side.
type AdminHandler struct {
	prompts    *store.PromptStore
	llmManager *llm.Manager
	exclusions *store.ExclusionStore
	promptLog  *store.PromptLogStore
	apiKey     string
}

func NewAdminHandler(prompts *store.PromptStore, llmManager *llm.Manager, exclusions *store.ExclusionStore, promptLog *store.PromptLogStore, apiKey string) *AdminHandler {
	return &AdminHandler{prompts: prompts, llmManager: llmManager, exclusions: exclusions, promptLog: promptLog, apiKey: apiKey}
}

// RequireAPIKey rejects requests that don't present the configured admin API
// key, via X-Admin-API-Key or an Authorization: Bearer header. Grounded on
// handler.InvitationHandler.RequireAdminAPIKey.
func (h *AdminHandler) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.apiKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "admin API not configured"})
			c.Abort()
			return
		}

		key := c.GetHeader("X-Admin-Api-Key")
		if key == "" {
			auth := c.GetHeader("Authorization")
			if len(auth) > 7 && auth[:7] == "Bearer " {
				key = auth[7:]
			}
		}

		if key != h.apiKey {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid or missing admin API key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ListPrompts handles GET /admin/agent-prompts.
func (h *AdminHandler) ListPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToPromptRecordResponses(h.prompts.List()))
}

// GetPrompt handles GET /admin/agent-prompts/:agent.
func (h *AdminHandler) GetPrompt(c *gin.Context) {
	rec, err := h.prompts.Get(c.Param("agent"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPromptRecordResponse(rec))
}

// UpdatePrompt handles PUT /admin/agent-prompts/:agent.
func (h *AdminHandler) UpdatePrompt(c *gin.Context) {
	var req dto.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	rec, err := h.prompts.Put(c.Param("agent"), req.Prompt)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToPromptRecordResponse(rec))
}

// ResetPrompt handles POST /admin/agent-prompts/reset?agent_name=. An empty
// or absent agent_name resets every agent's prompt.
func (h *AdminHandler) ResetPrompt(c *gin.Context) {
	if err := h.prompts.Reset(c.Query("agent_name")); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLLMConfig handles GET /admin/llm-config.
func (h *AdminHandler) GetLLMConfig(c *gin.Context) {
	cfg := h.llmManager.Current()
	c.JSON(http.StatusOK, dto.LLMConfigResponse{Provider: cfg.Provider, Model: cfg.Model, Temperature: cfg.Temperature})
}

// UpdateLLMConfig handles PUT /admin/llm-config, hot-swapping the active
// provider/model.
func (h *AdminHandler) UpdateLLMConfig(c *gin.Context) {
	var req dto.ReloadLLMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	current := h.llmManager.Current()
	newCfg := llm.Config{
		Provider:          req.Provider,
		Model:             req.Model,
		Temperature:       req.Temperature,
		OpenAIAPIKey:      req.OpenAIAPIKey,
		OpenAIBaseURL:     req.OpenAIBaseURL,
		GeminiAPIKey:      req.GeminiAPIKey,
		GeminiBaseURL:     req.GeminiBaseURL,
		OllamaBaseURL:     req.OllamaBaseURL,
		BlockingTimeout:   current.BlockingTimeout,
		StreamIdleTimeout: current.StreamIdleTimeout,
	}
	if err := h.llmManager.Reload(newCfg); err != nil {
		httperr.Write(c, domain.ConfigError(err.Error(), err))
		return
	}
	c.JSON(http.StatusOK, dto.LLMConfigResponse{Provider: newCfg.Provider, Model: newCfg.Model, Temperature: newCfg.Temperature})
}

// GetLoggingConfig handles GET /admin/logging-config.
func (h *AdminHandler) GetLoggingConfig(c *gin.Context) {
	c.JSON(http.StatusOK, dto.LoggingConfigResponse{Level: logger.CurrentLevel()})
}

// UpdateLoggingConfig handles PUT /admin/logging-config.
func (h *AdminHandler) UpdateLoggingConfig(c *gin.Context) {
	var req dto.UpdateLoggingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}
	logger.SetLevel(req.Level)
	c.JSON(http.StatusOK, dto.LoggingConfigResponse{Level: logger.CurrentLevel()})
}

// TestLLM handles POST /admin/test-llm, running a single blocking completion
// against the currently configured provider to verify connectivity.
func (h *AdminHandler) TestLLM(c *gin.Context) {
	cfg := h.llmManager.Current()
	reply, err := h.llmManager.Complete(c.Request.Context(), "", domain.PromptTypeSynthesis,
		"You are a connectivity test.", "",
		[]llm.Message{{Role: "user", Content: "Respond with OK if you can read this."}}, nil)
	if err != nil {
		httperr.Write(c, domain.UpstreamFailure("test-llm call failed", err))
		return
	}
	c.JSON(http.StatusOK, dto.TestLLMResponse{Provider: cfg.Provider, Model: cfg.Model, Reply: reply})
}

// AccuracyMetrics handles GET /admin/accuracy-metrics.
func (h *AdminHandler) AccuracyMetrics(c *gin.Context) {
	categories, overall := h.exclusions.AccuracyMetrics()
	c.JSON(http.StatusOK, dto.ToAccuracyResponse(categories, overall))
}

// PromptLogs handles GET /admin/prompt-logs.
func (h *AdminHandler) PromptLogs(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToPromptLogEntryResponses(h.promptLog.List()))
}

// ClearPromptLogs handles DELETE /admin/prompt-logs.
func (h *AdminHandler) ClearPromptLogs(c *gin.Context) {
	h.promptLog.Clear()
	c.Status(http.StatusNoContent)
}
