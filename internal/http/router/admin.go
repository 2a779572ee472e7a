package router

import (
	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/http/handler"
)

// AdminRouter mounts the prompt-editing, LLM-config, logging-config,
// accuracy, and prompt-log endpoints, all gated behind the admin API key.
func AdminRouter(rg *gin.RouterGroup, h *handler.AdminHandler) {
	admin := rg.Group("")
	admin.Use(h.RequireAPIKey())
	{
		admin.GET("/agent-prompts", h.ListPrompts)
		admin.GET("/agent-prompts/:agent", h.GetPrompt)
		admin.PUT("/agent-prompts/:agent", h.UpdatePrompt)
		admin.POST("/agent-prompts/reset", h.ResetPrompt)

		admin.GET("/llm-config", h.GetLLMConfig)
		admin.PUT("/llm-config", h.UpdateLLMConfig)

		admin.GET("/logging-config", h.GetLoggingConfig)
		admin.PUT("/logging-config", h.UpdateLoggingConfig)

		admin.POST("/test-llm", h.TestLLM)

		admin.GET("/accuracy-metrics", h.AccuracyMetrics)

		admin.GET("/prompt-logs", h.PromptLogs)
		admin.DELETE("/prompt-logs", h.ClearPromptLogs)
	}
}
