package dto

import (
	"time"

	"smartrecover.dev/engine/internal/domain"
)

type IncidentResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	AffectedServices []string   `json:"affected_services"`
	Assignee         string     `json:"assignee,omitempty"`
}

func ToIncidentResponse(inc domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:               inc.ID,
		Title:            inc.Title,
		Description:      inc.Description,
		Severity:         string(inc.Severity),
		Status:           string(inc.Status),
		CreatedAt:        inc.CreatedAt,
		UpdatedAt:        inc.UpdatedAt,
		AffectedServices: inc.AffectedServices,
		Assignee:         inc.Assignee,
	}
}

func ToIncidentResponses(incs []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, len(incs))
	for i, inc := range incs {
		out[i] = ToIncidentResponse(inc)
	}
	return out
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// IncidentDetailsResponse is the body of GET /incidents/{id}/details.
// AgentData is nil when nothing has been retrieved for this incident yet.
type IncidentDetailsResponse struct {
	Incident  IncidentResponse    `json:"incident"`
	AgentData *AgentDataResponse `json:"agent_results"`
}
