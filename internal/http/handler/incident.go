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

type IncidentHandler struct {
	incidents *store.IncidentStore
	graph     *orchestrator.Graph
}

func NewIncidentHandler(incidents *store.IncidentStore, graph *orchestrator.Graph) *IncidentHandler {
	return &IncidentHandler{incidents: incidents, graph: graph}
}

// List handles GET /incidents.
func (h *IncidentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToIncidentResponses(h.incidents.List()))
}

// Get handles GET /incidents/:id.
func (h *IncidentHandler) Get(c *gin.Context) {
	inc, err := h.incidents.Get(c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIncidentResponse(inc))
}

// Details handles GET /incidents/:id/details. agent_results is null in the
// response when nothing has been retrieved for this incident yet — unlike
// retrieve-context, this never triggers agent execution.
func (h *IncidentHandler) Details(c *gin.Context) {
	inc, err := h.incidents.Get(c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}

	resp := dto.IncidentDetailsResponse{Incident: dto.ToIncidentResponse(inc)}
	if s := h.graph.Details(inc); s != nil {
		data := dto.ToAgentDataResponse(s)
		resp.AgentData = &data
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus handles PUT /incidents/:id/status.
func (h *IncidentHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Write(c, domain.InvalidInput(err.Error()))
		return
	}

	inc, err := h.incidents.UpdateStatus(c.Param("id"), domain.Status(req.Status))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIncidentResponse(inc))
}
