package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartrecover.dev/engine/internal/cache"
	"smartrecover.dev/engine/internal/config"
	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/http/dto"
	"smartrecover.dev/engine/internal/http/router"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seedIncidents(t *testing.T) *store.IncidentStore {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/incidents.csv"
	content := "id,title,description,severity,status,created_at,affected_services,assignee\n" +
		"INC001,db pool exhausted,connections ran out,high,open,2026-01-01T00:00:00Z,checkout|payments,alice\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	s := store.NewIncidentStore()
	if err := s.LoadCSV(t.Context(), path); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.IncidentStore, *orchestrator.Graph, *store.ExclusionStore) {
	t.Helper()
	incidents := seedIncidents(t)
	exclusions := store.NewExclusionStore()

	incidentConn, err := connector.NewMockIncidentConnector(t.Context(), incidents, "", "")
	if err != nil {
		t.Fatalf("incident connector: %v", err)
	}
	kbConn, err := connector.NewMockKnowledgeBaseConnector(t.Context(), "", "")
	if err != nil {
		t.Fatalf("kb connector: %v", err)
	}

	graph := orchestrator.NewGraph(
		incidentConn, kbConn,
		nil, cache.New(cache.DefaultTTL), exclusions, nil,
		config.AgentsConfig{SimilarIncidentsK: 5, KnowledgeDocsK: 5, SimilarityThreshold: 0.2, ChangeWindowBefore: 7 * 24 * time.Hour, ChangeWindowAfter: time.Hour},
	)

	r := gin.New()
	services := &router.Services{Incidents: incidents, Graph: graph, Exclusions: exclusions}
	router.SetupRoutes(r, services, router.RouterConfig{})
	return r, incidents, graph, exclusions
}

func TestIncidentDetailsIsNullBeforeRetrieveAndPopulatedAfter(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/incidents/INC001/details", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.IncidentDetailsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AgentData != nil {
		t.Fatalf("expected agent_results to be null before retrieval, got %+v", resp.AgentData)
	}

	req = httptest.NewRequest(http.MethodPost, "/incidents/INC001/retrieve-context", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from retrieve-context, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/incidents/INC001/details", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AgentData == nil {
		t.Fatal("expected agent_results to be populated after retrieve-context")
	}
}

func TestExcludeItemThenListedThenRemoved(t *testing.T) {
	r, _, _, exclusions := newTestRouter(t)

	body := strings.NewReader(`{"item_id":"CHG005","kind":"change","source":"mock"}`)
	req := httptest.NewRequest(http.MethodPost, "/incidents/INC001/exclude-item", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/incidents/INC001/excluded-items", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var items []dto.ExcludedItemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != "CHG005" {
		t.Fatalf("expected one excluded item CHG005, got %+v", items)
	}

	req = httptest.NewRequest(http.MethodDelete, "/incidents/INC001/excluded-items/CHG005", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on remove, got %d", w.Code)
	}
	if exclusions.IsExcluded("INC001", "CHG005") {
		t.Fatal("expected exclusion to be removed")
	}
}

func TestResolveRequiresIncidentIDInBody(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(`{"user_query":"what happened?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing incident_id, got %d: %s", w.Code, w.Body.String())
	}
}
