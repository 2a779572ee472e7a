package orchestrator

import (
	"context"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
)

// Agent is the shape every evidence-gathering agent satisfies: a name used
// to key its prompt-store entry, and a default system prompt seeded into
// the store at startup.
type Agent interface {
	Name() string
	DefaultPrompt() string
}

const (
	AgentIncidentManagement = "incident_management"
	AgentKnowledgeBase      = "knowledge_base"
	AgentChangeCorrelation  = "change_correlation"
	AgentLogs               = "logs"
	AgentEvents             = "events"
	AgentSynthesis          = "synthesis"
	AgentChat               = "chat"
)

// IncidentManagementAgent ranks historical resolved incidents by similarity
// and reports a quality assessment for each.
type IncidentManagementAgent struct {
	conn      connector.IncidentConnector
	k         int
	threshold float64
}

func NewIncidentManagementAgent(conn connector.IncidentConnector, k int, threshold float64) *IncidentManagementAgent {
	if k <= 0 {
		k = 5
	}
	return &IncidentManagementAgent{conn: conn, k: k, threshold: threshold}
}

func (a *IncidentManagementAgent) Name() string { return AgentIncidentManagement }
func (a *IncidentManagementAgent) DefaultPrompt() string {
	return "You analyze historical incidents similar to the current one and surface their resolutions."
}

func (a *IncidentManagementAgent) Query(ctx context.Context, incident domain.Incident) (*domain.IncidentManagementResult, error) {
	tickets, err := a.conn.FindSimilar(ctx, incident, a.threshold, a.k)
	if err != nil {
		return nil, err
	}

	assessments := make(map[string]domain.QualityAssessment, len(tickets))
	var resolutions []domain.Ticket
	for _, t := range tickets {
		assessments[t.TicketID] = similarity.AssessQuality(t)
		if t.Resolution != "" {
			resolutions = append(resolutions, t)
		}
	}

	return &domain.IncidentManagementResult{
		Source:           a.conn.Name(),
		IncidentID:       incident.ID,
		SimilarIncidents: tickets,
		Qualities:        assessments,
		QualitySummary:   similarity.SummarizeQuality(assessments),
		Resolutions:      resolutions,
	}, nil
}
