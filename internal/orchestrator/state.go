// Package orchestrator runs the five-agent evidence graph per incident and
// synthesizes a resolution. Grounded on the deleted internal/brain package's
// claim → run-steps → release orchestration shape and its context_builder's
// strings.Builder-based, ordered omit-if-empty section rendering.
package orchestrator

import "smartrecover.dev/engine/internal/domain"

// State is the shared object threaded through the agent graph for a single
// request. Only synthesis populates the Synthesis field; every other node
// writes exactly one slot and leaves the rest untouched.
type State struct {
	IncidentID string
	UserQuery  string
	Incident   domain.Incident

	ServiceNowResults *domain.IncidentManagementResult
	ConfluenceResults *domain.KnowledgeBaseResult
	ChangeResults     *domain.ChangeCorrelationResult
	LogsResults       *domain.LogsResult
	EventsResults     *domain.EventsResult

	Synthesis string
}

// Data collapses State's five evidence slots into the shape the TTL cache
// stores and chat reuses.
func (s *State) Data() domain.AgentData {
	return domain.AgentData{
		ServiceNowResults: s.ServiceNowResults,
		ConfluenceResults: s.ConfluenceResults,
		ChangeResults:     s.ChangeResults,
		LogsResults:       s.LogsResults,
		EventsResults:     s.EventsResults,
	}
}

// FromData seeds a State's evidence slots from a previously cached AgentData
// (used by /chat/stream and /retrieve-context to skip re-running the graph).
func FromData(incident domain.Incident, data domain.AgentData) *State {
	return &State{
		IncidentID:        incident.ID,
		Incident:          incident,
		ServiceNowResults: data.ServiceNowResults,
		ConfluenceResults: data.ConfluenceResults,
		ChangeResults:     data.ChangeResults,
		LogsResults:       data.LogsResults,
		EventsResults:     data.EventsResults,
	}
}

// RequestPhase is the state-machine of a single request.
type RequestPhase string

const (
	PhaseLoading      RequestPhase = "loading"
	PhaseRetrieving   RequestPhase = "retrieving"
	PhaseRanking      RequestPhase = "ranking"
	PhaseSynthesizing RequestPhase = "synthesizing"
	PhaseComplete     RequestPhase = "complete"
	PhaseFailed       RequestPhase = "failed"
	PhaseCancelled    RequestPhase = "cancelled"
)
