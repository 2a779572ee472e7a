package router

import (
	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/http/handler"
)

// EvidenceRouter mounts routes nested under /incidents/:id. Resolve is
// mounted separately at the top-level POST /resolve by ResolveRouter.
func EvidenceRouter(rg *gin.RouterGroup, h *handler.EvidenceHandler) {
	rg.POST("/:id/retrieve-context", h.RetrieveContext)
	rg.GET("/:id/excluded-items", h.ListExclusions)
	rg.POST("/:id/exclude-item", h.Exclude)
	rg.DELETE("/:id/excluded-items/:item_id", h.RemoveExclusion)
}

// ResolveRouter mounts the top-level POST /resolve route.
func ResolveRouter(rg *gin.RouterGroup, h *handler.EvidenceHandler) {
	rg.POST("", h.Resolve)
}
