package router

import (
	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/http/handler"
)

func IncidentRouter(rg *gin.RouterGroup, h *handler.IncidentHandler) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/details", h.Details)
	rg.PUT("/:id/status", h.UpdateStatus)
}
