package orchestrator_test

import (
	"strings"
	"testing"
	"time"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

func TestConfidenceIsPurelyAdditiveAndClamped(t *testing.T) {
	s := &orchestrator.State{}
	if got := orchestrator.Confidence(s); got != 0.2 {
		t.Fatalf("expected base confidence 0.2 with no evidence, got %v", got)
	}

	s.ChangeResults = &domain.ChangeCorrelationResult{TopSuspect: &domain.ChangeRecord{CorrelationScore: 0.9}}
	s.ServiceNowResults = &domain.IncidentManagementResult{SimilarIncidents: []domain.Ticket{{}}}
	s.ConfluenceResults = &domain.KnowledgeBaseResult{Documents: []domain.KnowledgeArticle{{}}}
	s.LogsResults = &domain.LogsResult{ErrorCount: 1}
	s.EventsResults = &domain.EventsResult{CriticalCount: 1}

	got := orchestrator.Confidence(s)
	want := 0.2 + 0.3 + 0.2 + 0.15 + 0.1 + 0.05
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConfidenceIgnoresTopSuspectBelowCorrelationFloor(t *testing.T) {
	s := &orchestrator.State{
		ChangeResults: &domain.ChangeCorrelationResult{TopSuspect: &domain.ChangeRecord{CorrelationScore: 0.75}},
	}
	if got := orchestrator.Confidence(s); got != 0.2 {
		t.Fatalf("expected top-suspect bonus withheld below 0.8 correlation, got %v", got)
	}
}

func TestBuildContextOmitsEmptySectionsAndOrdersRemaining(t *testing.T) {
	s := &orchestrator.State{
		ChangeResults: &domain.ChangeCorrelationResult{
			TopSuspect: &domain.ChangeRecord{ChangeID: "CHG1", Service: "checkout", DeployedAt: time.Now(), CorrelationScore: 0.8, Description: "bad config"},
		},
		LogsResults: &domain.LogsResult{Logs: []domain.LogEntry{{Service: "checkout", Message: "timeout", Level: domain.LogLevelError}}},
	}

	out := orchestrator.BuildContext(s, 5)

	topIdx := strings.Index(out, "Top Suspect Change")
	logsIdx := strings.Index(out, "## Logs")
	if topIdx == -1 || logsIdx == -1 {
		t.Fatalf("expected both present sections to render, got:\n%s", out)
	}
	if topIdx > logsIdx {
		t.Fatalf("expected Top Suspect Change section before Logs section")
	}
	if strings.Contains(out, "Similar Historical Incidents") {
		t.Fatalf("expected empty similar-incidents section to be omitted, got:\n%s", out)
	}
	if !strings.Contains(out, "Summary Counts") {
		t.Fatalf("expected summary counts section always present, got:\n%s", out)
	}
}

func TestApplyExclusionsRemovesExcludedTicketsAndKeepsOthers(t *testing.T) {
	exclusions := store.NewExclusionStore()
	exclusions.Exclude("INC1", domain.ExcludedItem{ItemID: "TCK1", Kind: store.CategorySimilarIncidents, Source: "mock"})

	s := &orchestrator.State{
		IncidentID: "INC1",
		ServiceNowResults: &domain.IncidentManagementResult{
			SimilarIncidents: []domain.Ticket{{TicketID: "TCK1"}, {TicketID: "TCK2"}},
		},
	}

	orchestrator.ApplyExclusions(s, exclusions)

	if len(s.ServiceNowResults.SimilarIncidents) != 1 || s.ServiceNowResults.SimilarIncidents[0].TicketID != "TCK2" {
		t.Fatalf("expected only TCK2 to survive exclusion, got %+v", s.ServiceNowResults.SimilarIncidents)
	}
}
