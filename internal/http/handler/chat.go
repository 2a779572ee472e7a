package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/http/dto"
	"smartrecover.dev/engine/internal/http/httperr"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

// ChatHandler streams follow-up chat responses over server-sent events.
// Grounded on handler.AgentStatusHandler.Stream's raw http.Flusher and
// ctx.Done() cancellation loop — adapted from reading a Redis stream to
// forwarding tokens off an in-process channel.
type ChatHandler struct {
	incidents *store.IncidentStore
	graph     *orchestrator.Graph
}

func NewChatHandler(incidents *store.IncidentStore, graph *orchestrator.Graph) *ChatHandler {
	return &ChatHandler{incidents: incidents, graph: graph}
}

// Stream handles POST /chat/stream.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	inc, err := h.incidents.Get(req.IncidentID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		httperr.Write(c, domain.ConfigError("streaming not supported by this response writer", nil))
		return
	}

	setSSEHeaders(c.Writer)

	ctx := c.Request.Context()
	adHocExclusions := dto.ToExcludedItems(req.ExcludedItems)
	tokens, errs := h.graph.Chat(ctx, inc, req.Message, req.ConversationHistory, adHocExclusions)

	for {
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "chat stream cancelled by client disconnect",
				"incident_id", inc.ID, "kind", domain.KindCancelled)
			return
		case tok, open := <-tokens:
			if !open {
				tokens = nil
				break
			}
			sseWrite(c.Writer, tok)
			flusher.Flush()
			continue
		case err, open := <-errs:
			if !open {
				errs = nil
				break
			}
			if err != nil {
				sseWrite(c.Writer, err.Error())
				flusher.Flush()
			}
			continue
		}
		if tokens == nil && errs == nil {
			sseWrite(c.Writer, "[DONE]")
			flusher.Flush()
			return
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

// sseWrite emits a single SSE frame in the exact wire format `data:
// <payload>\n\n` — no event: line, matching the chat contract's framing.
func sseWrite(w http.ResponseWriter, payload string) {
	for _, line := range strings.Split(payload, "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = fmt.Fprint(w, "\n")
}
