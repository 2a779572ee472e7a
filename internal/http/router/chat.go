package router

import (
	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/http/handler"
)

// ChatRouter mounts the top-level POST /chat/stream route.
func ChatRouter(rg *gin.RouterGroup, h *handler.ChatHandler) {
	rg.POST("/stream", h.Stream)
}
