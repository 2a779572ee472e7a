package orchestrator

import (
	"context"
	"sort"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
)

// EventsAgent mirrors LogsAgent's confidence scoring for platform events.
type EventsAgent struct {
	conn connector.IncidentConnector
}

func NewEventsAgent(conn connector.IncidentConnector) *EventsAgent {
	return &EventsAgent{conn: conn}
}

func (a *EventsAgent) Name() string { return AgentEvents }
func (a *EventsAgent) DefaultPrompt() string {
	return "You surface platform events most likely relevant to diagnosing the incident."
}

func (a *EventsAgent) Query(ctx context.Context, incident domain.Incident) (*domain.EventsResult, error) {
	events, err := a.conn.FindEvents(ctx, incident)
	if err != nil {
		return nil, err
	}

	services := servicesSet(incident.AffectedServices)
	for i := range events {
		events[i].ConfidenceScore = eventConfidence(incident, services, events[i])
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ConfidenceScore > events[j].ConfidenceScore
	})

	result := &domain.EventsResult{
		Source:     a.conn.Name(),
		IncidentID: incident.ID,
		Events:     events,
		TotalCount: len(events),
	}
	for _, e := range events {
		switch e.Severity {
		case domain.EventSeverityCritical:
			result.CriticalCount++
		case domain.EventSeverityWarning:
			result.WarningCount++
		}
	}
	return result, nil
}

func eventConfidence(incident domain.Incident, services map[string]bool, e domain.Event) float64 {
	serviceMatch := 0.0
	if services[e.Application] {
		serviceMatch = 1.0
	}
	recency := recencyScore(incident.CreatedAt, e.Timestamp)

	var severity float64
	switch e.Severity {
	case domain.EventSeverityCritical:
		severity = 1.0
	case domain.EventSeverityWarning:
		severity = 0.6
	default:
		severity = 0.2
	}

	return evidenceWeightServiceMatch*serviceMatch + evidenceWeightRecency*recency + evidenceWeightSeverity*severity
}
