package orchestrator

import (
	"context"
	"sort"
	"time"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
)

const (
	evidenceWeightServiceMatch = 0.5
	evidenceWeightRecency      = 0.3
	evidenceWeightSeverity     = 0.2

	// evidenceRecencyWindow bounds how quickly recency decays to zero; logs
	// and events are expected to cluster within an hour of the incident.
	evidenceRecencyWindow = time.Hour
)

// LogsAgent orders log entries by a confidence score blending service
// match, recency, and level.
type LogsAgent struct {
	conn connector.IncidentConnector
}

func NewLogsAgent(conn connector.IncidentConnector) *LogsAgent {
	return &LogsAgent{conn: conn}
}

func (a *LogsAgent) Name() string { return AgentLogs }
func (a *LogsAgent) DefaultPrompt() string {
	return "You surface log entries most likely relevant to diagnosing the incident."
}

func (a *LogsAgent) Query(ctx context.Context, incident domain.Incident) (*domain.LogsResult, error) {
	logs, err := a.conn.FindLogs(ctx, incident)
	if err != nil {
		return nil, err
	}

	services := servicesSet(incident.AffectedServices)
	for i := range logs {
		logs[i].ConfidenceScore = logConfidence(incident, services, logs[i])
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].ConfidenceScore > logs[j].ConfidenceScore
	})

	result := &domain.LogsResult{
		Source:     a.conn.Name(),
		IncidentID: incident.ID,
		Logs:       logs,
		TotalCount: len(logs),
	}
	for _, l := range logs {
		switch l.Level {
		case domain.LogLevelError:
			result.ErrorCount++
		case domain.LogLevelWarn:
			result.WarningCount++
		}
	}
	return result, nil
}

func servicesSet(services []string) map[string]bool {
	set := make(map[string]bool, len(services))
	for _, s := range services {
		set[s] = true
	}
	return set
}

func recencyScore(createdAt, ts time.Time) float64 {
	delta := createdAt.Sub(ts)
	if delta < 0 {
		delta = -delta
	}
	score := 1 - float64(delta)/float64(evidenceRecencyWindow)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func logConfidence(incident domain.Incident, services map[string]bool, l domain.LogEntry) float64 {
	serviceMatch := 0.0
	if services[l.Service] {
		serviceMatch = 1.0
	}
	recency := recencyScore(incident.CreatedAt, l.Timestamp)

	var severity float64
	switch l.Level {
	case domain.LogLevelError:
		severity = 1.0
	case domain.LogLevelWarn:
		severity = 0.6
	default:
		severity = 0.2
	}

	return evidenceWeightServiceMatch*serviceMatch + evidenceWeightRecency*recency + evidenceWeightSeverity*severity
}
