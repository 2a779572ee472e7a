package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
)

const (
	changeWeightServiceOverlap = 0.5
	changeWeightTemporal       = 0.3
	changeWeightDescOverlap    = 0.2

	changeTopSuspectThreshold = 0.7
	changeHighThreshold       = 0.5
	changeMediumThreshold     = 0.3
)

// ChangeCorrelationAgent scores candidate change records against the
// incident's affected services, timing, and description text.
type ChangeCorrelationAgent struct {
	conn   connector.IncidentConnector
	before time.Duration
	after  time.Duration
}

func NewChangeCorrelationAgent(conn connector.IncidentConnector, before, after time.Duration) *ChangeCorrelationAgent {
	if before <= 0 {
		before = 7 * 24 * time.Hour
	}
	if after <= 0 {
		after = time.Hour
	}
	return &ChangeCorrelationAgent{conn: conn, before: before, after: after}
}

func (a *ChangeCorrelationAgent) Name() string { return AgentChangeCorrelation }
func (a *ChangeCorrelationAgent) DefaultPrompt() string {
	return "You correlate recent deploys and changes with the incident to identify a likely root cause."
}

func (a *ChangeCorrelationAgent) Query(ctx context.Context, incident domain.Incident) (*domain.ChangeCorrelationResult, error) {
	candidates, err := a.conn.FindChanges(ctx, incident, connector.ChangeWindow{Before: a.before, After: a.after})
	if err != nil {
		return nil, err
	}

	incidentText := fmt.Sprintf("%s %s", incident.Title, incident.Description)
	incidentServices := similarity.TokenizeServices(incident.AffectedServices)

	scored := make([]domain.ChangeRecord, 0, len(candidates))
	for _, ch := range candidates {
		ch.CorrelationScore = a.score(incident, incidentText, incidentServices, ch)
		scored = append(scored, ch)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].CorrelationScore == scored[j].CorrelationScore {
			return scored[i].ChangeID < scored[j].ChangeID
		}
		return scored[i].CorrelationScore > scored[j].CorrelationScore
	})

	result := &domain.ChangeCorrelationResult{
		Source:     a.conn.Name(),
		IncidentID: incident.ID,
	}
	for i, ch := range scored {
		switch {
		case ch.CorrelationScore >= changeTopSuspectThreshold:
			if result.TopSuspect == nil {
				top := scored[i]
				result.TopSuspect = &top
			}
			result.HighCorrelationChanges = append(result.HighCorrelationChanges, ch)
			result.AllCorrelations = append(result.AllCorrelations, ch)
		case ch.CorrelationScore >= changeHighThreshold:
			result.HighCorrelationChanges = append(result.HighCorrelationChanges, ch)
			result.AllCorrelations = append(result.AllCorrelations, ch)
		case ch.CorrelationScore >= changeMediumThreshold:
			result.MediumCorrelationChanges = append(result.MediumCorrelationChanges, ch)
			result.AllCorrelations = append(result.AllCorrelations, ch)
		}
		// below changeMediumThreshold: dropped.
	}

	return result, nil
}

func (a *ChangeCorrelationAgent) score(incident domain.Incident, incidentText string, incidentServices map[string]bool, ch domain.ChangeRecord) float64 {
	serviceScore := similarity.Jaccard(incidentServices, similarity.TokenizeServices([]string{ch.Service}))

	delta := incident.CreatedAt.Sub(ch.DeployedAt)
	if delta < 0 {
		delta = -delta
	}
	temporalScore := 1 - float64(delta)/float64(a.before)
	if temporalScore < 0 {
		temporalScore = 0
	}
	if temporalScore > 1 {
		temporalScore = 1
	}

	descScore := similarity.KeywordOverlap(incidentText, ch.Description)

	return changeWeightServiceOverlap*serviceScore + changeWeightTemporal*temporalScore + changeWeightDescOverlap*descScore
}
