package connector_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/store"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestMockIncidentConnectorFindSimilarExcludesSelfAndOpenIncidents(t *testing.T) {
	dir := t.TempDir()
	incidentsPath := writeFixture(t, dir, "incidents.csv",
		"id,title,description,severity,status,created_at,affected_services,assignee\n"+
			"INC001,checkout pods crashlooping,checkout service keeps restarting,high,open,2026-01-02T00:00:00Z,checkout,alice\n"+
			"INC002,checkout pods crashlooping,checkout service keeps restarting,high,resolved,2026-01-01T00:00:00Z,checkout,bob\n"+
			"INC003,checkout pods crashlooping,checkout service keeps restarting,high,open,2026-01-01T00:00:00Z,checkout,carol\n")
	ticketsPath := writeFixture(t, dir, "servicenow_tickets.csv",
		"incident_id,ticket_id,type,resolution,description,source\n"+
			"INC002,TCK1,similar_incident,restarted the deployment and rolled back the bad image,checkout pods were crashlooping after a deploy,servicenow\n"+
			"INC003,TCK3,similar_incident,rolled back the checkout deployment to the previous image,checkout pods were crashlooping after a deploy,servicenow\n")

	incidents := store.NewIncidentStore()
	if err := incidents.LoadCSV(t.Context(), incidentsPath); err != nil {
		t.Fatalf("load incidents: %v", err)
	}
	conn, err := connector.NewMockIncidentConnector(t.Context(), incidents, ticketsPath, "")
	if err != nil {
		t.Fatalf("new connector: %v", err)
	}

	target, err := incidents.Get("INC001")
	if err != nil {
		t.Fatalf("get target: %v", err)
	}

	hits, err := conn.FindSimilar(t.Context(), target, 0.2, 5)
	if err != nil {
		t.Fatalf("find similar: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly 1 similar ticket (INC002, not self, not open INC003), got %d", len(hits))
	}
	if hits[0].IncidentID != "INC002" {
		t.Fatalf("expected INC002, got %s", hits[0].IncidentID)
	}
	if hits[0].Resolution == "" {
		t.Fatalf("expected resolution to be populated from servicenow_tickets.csv")
	}
}

func TestMockIncidentConnectorFindChangesMatchesByWindowOnly(t *testing.T) {
	dir := t.TempDir()
	incidentsPath := writeFixture(t, dir, "incidents.csv",
		"id,title,description,severity,status,created_at,affected_services,assignee\n"+
			"INC001,db errors,connections failing,high,open,2026-01-02T12:00:00Z,checkout,alice\n")
	changesPath := writeFixture(t, dir, "change_correlations.csv",
		"incident_id,change_id,description,deployed_at,correlation_score\n"+
			"INC999,CHG1,rolled out new connection pool config,2026-01-02T11:30:00Z,0.9\n"+
			"INC999,CHG2,unrelated change long before the window,2025-01-01T00:00:00Z,0.1\n")

	incidents := store.NewIncidentStore()
	if err := incidents.LoadCSV(t.Context(), incidentsPath); err != nil {
		t.Fatalf("load incidents: %v", err)
	}
	conn, err := connector.NewMockIncidentConnector(t.Context(), incidents, "", changesPath)
	if err != nil {
		t.Fatalf("new connector: %v", err)
	}

	target, err := incidents.Get("INC001")
	if err != nil {
		t.Fatalf("get target: %v", err)
	}

	changes, err := conn.FindChanges(t.Context(), target, connector.ChangeWindow{
		Before: 7 * 24 * time.Hour,
		After:  1 * time.Hour,
	})
	if err != nil {
		t.Fatalf("find changes: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected exactly 1 change inside the window (CHG1, a different incident_id), got %d", len(changes))
	}
	if changes[0].ChangeID != "CHG1" {
		t.Fatalf("expected CHG1, got %s", changes[0].ChangeID)
	}
	if changes[0].CorrelationScore != 0 {
		t.Fatalf("expected correlation_score to be left unparsed (computed later by the agent), got %v", changes[0].CorrelationScore)
	}
}

func TestMockKnowledgeBaseConnectorSearchRanksByKeywordOverlap(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFixture(t, dir, "confluence_docs.csv",
		"incident_id,doc_id,title,content\n"+
			"INC001,DOC1,database connection pool exhaustion runbook,steps to diagnose and resolve connection pool exhaustion in the database layer\n"+
			"INC002,DOC2,how to file expense reports,finance process document with no relation to incidents\n")
	docsDir := filepath.Join(dir, "runbooks")
	if err := os.Mkdir(docsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, docsDir, "restart-pod.md",
		"---\ntitle: restarting a crashlooping pod\n---\nKill the pod and let the deployment controller recreate it.\n")

	conn, err := connector.NewMockKnowledgeBaseConnector(t.Context(), csvPath, docsDir)
	if err != nil {
		t.Fatalf("new connector: %v", err)
	}

	results, err := conn.Search(t.Context(), "database connection pool exhaustion", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 || results[0].DocID != "DOC1" {
		t.Fatalf("expected DOC1 ranked first by keyword overlap, got %+v", results)
	}

	doc, err := conn.Get(t.Context(), "restart-pod.md")
	if err != nil {
		t.Fatalf("get runbook: %v", err)
	}
	if doc.Title != "restarting a crashlooping pod" {
		t.Fatalf("expected front-matter title to be parsed, got %q", doc.Title)
	}
}

func TestMockKnowledgeBaseConnectorGetUnknownDocReturnsNotFound(t *testing.T) {
	conn, err := connector.NewMockKnowledgeBaseConnector(t.Context(), "", "")
	if err != nil {
		t.Fatalf("new connector: %v", err)
	}
	if _, err := conn.Get(t.Context(), "missing"); err == nil {
		t.Fatalf("expected not-found error")
	} else if kind, ok := domain.KindOf(err); !ok || kind != domain.KindNotFound {
		t.Fatalf("expected KindNotFound, got %v (ok=%v)", kind, ok)
	}
}
