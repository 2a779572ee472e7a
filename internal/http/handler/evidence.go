package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/http/dto"
	"smartrecover.dev/engine/internal/http/httperr"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

// EvidenceHandler covers evidence retrieval, resolution, and exclusion
// management. Resolve is mounted at the top-level POST /resolve (no :id
// path segment — the incident id travels in the request body instead).
type EvidenceHandler struct {
	incidents  *store.IncidentStore
	graph      *orchestrator.Graph
	exclusions *store.ExclusionStore
}

func NewEvidenceHandler(incidents *store.IncidentStore, graph *orchestrator.Graph, exclusions *store.ExclusionStore) *EvidenceHandler {
	return &EvidenceHandler{incidents: incidents, graph: graph, exclusions: exclusions}
}

// RetrieveContext handles POST /incidents/:id/retrieve-context.
func (h *EvidenceHandler) RetrieveContext(c *gin.Context) {
	inc, err := h.incidents.Get(c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}

	s := h.graph.ContextFor(c.Request.Context(), inc)
	c.JSON(http.StatusOK, dto.ToAgentDataResponse(s))
}

// Resolve handles POST /resolve.
func (h *EvidenceHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	inc, err := h.incidents.Get(req.IncidentID)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	resolution, err := h.graph.Resolve(c.Request.Context(), inc, req.UserQuery)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToResolutionResponse(resolution))
}

// Exclude handles POST /incidents/:id/exclude-item.
func (h *EvidenceHandler) Exclude(c *gin.Context) {
	incidentID := c.Param("id")
	if _, err := h.incidents.Get(incidentID); err != nil {
		httperr.Write(c, err)
		return
	}

	var req dto.ExcludeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	h.exclusions.Exclude(incidentID, domain.ExcludedItem{ItemID: req.ItemID, Kind: req.Kind, Source: req.Source})
	c.Status(http.StatusNoContent)
}

// ListExclusions handles GET /incidents/:id/excluded-items.
func (h *EvidenceHandler) ListExclusions(c *gin.Context) {
	incidentID := c.Param("id")
	if _, err := h.incidents.Get(incidentID); err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToExcludedItemResponses(h.exclusions.List(incidentID)))
}

// RemoveExclusion handles DELETE /incidents/:id/excluded-items/:item_id.
func (h *EvidenceHandler) RemoveExclusion(c *gin.Context) {
	incidentID := c.Param("id")
	if _, err := h.incidents.Get(incidentID); err != nil {
		httperr.Write(c, err)
		return
	}
	h.exclusions.Remove(incidentID, c.Param("item_id"))
	c.Status(http.StatusNoContent)
}
