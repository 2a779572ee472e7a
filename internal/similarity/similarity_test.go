package similarity_test

import (
	"testing"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
)

func TestIdenticalIncidentsScoreOne(t *testing.T) {
	base := domain.Incident{
		Title:            "database connection pool exhausted",
		Description:      "the primary database ran out of available connections during peak traffic",
		AffectedServices: []string{"checkout", "payments"},
	}
	other := base

	got := similarity.IncidentSimilarity(base, other)
	if got != 1.0 {
		t.Fatalf("expected similarity 1.0 for identical token sets, got %v", got)
	}
}

func TestEmptyTextsScoreZero(t *testing.T) {
	a := domain.Incident{}
	b := domain.Incident{}
	if got := similarity.IncidentSimilarity(a, b); got != 0 {
		t.Fatalf("expected 0 for two empty incidents, got %v", got)
	}
}

func TestQualityAssessmentLevels(t *testing.T) {
	good := domain.Ticket{
		Kind:        domain.TicketKindSimilarIncident,
		Description: "a sufficiently long description of the incident at hand",
		Resolution:  "restarted the connection pool and raised the max size",
	}
	if a := similarity.AssessQuality(good); a.Level != "good" {
		t.Fatalf("expected good, got %s (score %v)", a.Level, a.Score)
	}

	poor := domain.Ticket{Kind: domain.TicketKindSimilarIncident}
	if a := similarity.AssessQuality(poor); a.Level != "poor" || len(a.Issues) != 2 {
		t.Fatalf("expected poor with 2 issues, got %s issues=%v", a.Level, a.Issues)
	}
}

func TestJaccardKnownValue(t *testing.T) {
	a := map[string]bool{"x": true, "y": true}
	b := map[string]bool{"y": true, "z": true}
	got := similarity.Jaccard(a, b)
	if got != 1.0/3.0 {
		t.Fatalf("expected 1/3, got %v", got)
	}
}
