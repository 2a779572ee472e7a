package store_test

import (
	"os"
	"sync"
	"testing"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/store"
)

func seedStore() *store.IncidentStore {
	s := store.NewIncidentStore()
	// LoadCSV is exercised by the connector tests against real fixtures;
	// this store stays empty, which is enough for tests that only need
	// UpdateStatus's input validation and no stored incidents.
	return s
}

func TestUpdateStatusRejectsInvalidEnum(t *testing.T) {
	s := seedStore()
	if _, err := s.UpdateStatus("missing", domain.Status("bogus")); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}

func TestUpdateStatusConcurrentRaceLeavesConsistentState(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/incidents.csv"
	writeFixtureCSV(t, path)

	s := store.NewIncidentStore()
	if err := s.LoadCSV(t.Context(), path); err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.UpdateStatus("INC001", domain.StatusInvestigating) }()
	go func() { defer wg.Done(); s.UpdateStatus("INC001", domain.StatusResolved) }()
	wg.Wait()

	got, err := s.Get("INC001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusInvestigating && got.Status != domain.StatusResolved {
		t.Fatalf("expected one of the two applied statuses, got %q", got.Status)
	}
}

func writeFixtureCSV(t *testing.T, path string) {
	t.Helper()
	content := "id,title,description,severity,status,created_at,affected_services,assignee\n" +
		"INC001,db pool exhausted,connections ran out,high,open,2026-01-01T00:00:00Z,checkout|payments,alice\n"
	if err := writeFile(path, content); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
