package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/http/handler"
	"smartrecover.dev/engine/internal/llm"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

// Services bundles the components handlers are constructed from.
type Services struct {
	Incidents  *store.IncidentStore
	Graph      *orchestrator.Graph
	Exclusions *store.ExclusionStore
	Prompts    *store.PromptStore
	PromptLog  *store.PromptLogStore
	LLMManager *llm.Manager
}

type RouterConfig struct {
	AdminAPIKey string
}

// SetupRoutes mounts every route under router, which may be the engine's
// root or a version-prefix group (e.g. router.Group("/api/v1")) — both
// satisfy gin.IRouter.
func SetupRoutes(router gin.IRouter, services *Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	incidentHandler := handler.NewIncidentHandler(services.Incidents, services.Graph)
	IncidentRouter(router.Group("/incidents"), incidentHandler)

	evidenceHandler := handler.NewEvidenceHandler(services.Incidents, services.Graph, services.Exclusions)
	EvidenceRouter(router.Group("/incidents"), evidenceHandler)
	ResolveRouter(router.Group("/resolve"), evidenceHandler)

	chatHandler := handler.NewChatHandler(services.Incidents, services.Graph)
	ChatRouter(router.Group("/chat"), chatHandler)

	adminHandler := handler.NewAdminHandler(services.Prompts, services.LLMManager, services.Exclusions, services.PromptLog, cfg.AdminAPIKey)
	AdminRouter(router.Group("/admin"), adminHandler)
}
