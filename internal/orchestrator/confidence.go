package orchestrator

import "smartrecover.dev/engine/internal/domain"

const (
	confidenceBase             = 0.2
	confidenceTopSuspect       = 0.3
	confidenceSimilarIncident  = 0.2
	confidenceKnowledgeDoc     = 0.15
	confidenceErrorLog         = 0.1
	confidenceCriticalEvent    = 0.05
	topSuspectCorrelationFloor = 0.8
)

// Confidence computes the resolve response's confidence score: a purely
// additive blend over evidence presence, clamped to [0,1].
func Confidence(s *State) float64 {
	score := confidenceBase

	if s.ChangeResults != nil && s.ChangeResults.TopSuspect != nil && s.ChangeResults.TopSuspect.CorrelationScore >= topSuspectCorrelationFloor {
		score += confidenceTopSuspect
	}
	if s.ServiceNowResults != nil && len(s.ServiceNowResults.SimilarIncidents) > 0 {
		score += confidenceSimilarIncident
	}
	if s.ConfluenceResults != nil && len(s.ConfluenceResults.Documents) > 0 {
		score += confidenceKnowledgeDoc
	}
	if hasErrorLog(s.LogsResults) {
		score += confidenceErrorLog
	}
	if hasCriticalEvent(s.EventsResults) {
		score += confidenceCriticalEvent
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

func hasErrorLog(r *domain.LogsResult) bool {
	return r != nil && r.ErrorCount > 0
}

func hasCriticalEvent(r *domain.EventsResult) bool {
	return r != nil && r.CriticalCount > 0
}
