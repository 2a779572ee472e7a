package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartrecover.dev/engine/internal/cache"
	"smartrecover.dev/engine/internal/config"
	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/store"
)

// partiallyFailingConnector fails FindSimilar but succeeds at everything
// else, exercising per-node graceful degradation: the graph must
// still produce a full State with only that one slot empty.
type partiallyFailingConnector struct{}

func (partiallyFailingConnector) Name() string { return "fake" }
func (partiallyFailingConnector) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	return nil, nil
}
func (partiallyFailingConnector) GetIncident(ctx context.Context, id string) (domain.Incident, error) {
	return domain.Incident{}, nil
}
func (partiallyFailingConnector) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Incident, error) {
	return domain.Incident{}, nil
}
func (partiallyFailingConnector) FindSimilar(ctx context.Context, incident domain.Incident, threshold float64, k int) ([]domain.Ticket, error) {
	return nil, errors.New("upstream down")
}
func (partiallyFailingConnector) FindChanges(ctx context.Context, incident domain.Incident, window connector.ChangeWindow) ([]domain.ChangeRecord, error) {
	return nil, nil
}
func (partiallyFailingConnector) FindLogs(ctx context.Context, incident domain.Incident) ([]domain.LogEntry, error) {
	return []domain.LogEntry{{Service: "checkout", Level: domain.LogLevelError, Message: "boom", Timestamp: incident.CreatedAt}}, nil
}
func (partiallyFailingConnector) FindEvents(ctx context.Context, incident domain.Incident) ([]domain.Event, error) {
	return nil, nil
}

type emptyKnowledgeBaseConnector struct{}

func (emptyKnowledgeBaseConnector) Name() string { return "fake" }
func (emptyKnowledgeBaseConnector) Search(ctx context.Context, queryTerms string, k int) ([]domain.KnowledgeDocument, error) {
	return nil, nil
}
func (emptyKnowledgeBaseConnector) Get(ctx context.Context, docID string) (domain.KnowledgeDocument, error) {
	return domain.KnowledgeDocument{}, domain.NotFound("not found")
}

func TestGraphRetrieveDegradesGracefullyOnAgentFailure(t *testing.T) {
	g := orchestrator.NewGraph(
		partiallyFailingConnector{}, emptyKnowledgeBaseConnector{}, nil,
		cache.New(cache.DefaultTTL), store.NewExclusionStore(), nil,
		config.AgentsConfig{SimilarIncidentsK: 5, KnowledgeDocsK: 5, SimilarityThreshold: 0.2, ChangeWindowBefore: 7 * 24 * time.Hour, ChangeWindowAfter: time.Hour},
	)

	incident := domain.Incident{ID: "INC1", Title: "checkout down", CreatedAt: time.Now(), AffectedServices: []string{"checkout"}}
	s := g.Retrieve(context.Background(), incident, "")

	if s.ServiceNowResults != nil {
		t.Fatalf("expected ServiceNowResults to stay nil after FindSimilar failure, got %+v", s.ServiceNowResults)
	}
	if s.LogsResults == nil || len(s.LogsResults.Logs) != 1 {
		t.Fatalf("expected logs agent to still succeed, got %+v", s.LogsResults)
	}
}

func TestGraphDetailsReturnsNilOnCacheMissWithoutRunningAgents(t *testing.T) {
	g := orchestrator.NewGraph(
		partiallyFailingConnector{}, emptyKnowledgeBaseConnector{}, nil,
		cache.New(cache.DefaultTTL), store.NewExclusionStore(), nil,
		config.AgentsConfig{SimilarIncidentsK: 5, KnowledgeDocsK: 5, SimilarityThreshold: 0.2, ChangeWindowBefore: 7 * 24 * time.Hour, ChangeWindowAfter: time.Hour},
	)

	incident := domain.Incident{ID: "INC2", Title: "checkout down", CreatedAt: time.Now(), AffectedServices: []string{"checkout"}}

	if s := g.Details(incident); s != nil {
		t.Fatalf("expected Details to return nil on a cache miss, got %+v", s)
	}

	g.Retrieve(context.Background(), incident, "")

	if s := g.Details(incident); s == nil {
		t.Fatal("expected Details to return the cached evidence after Retrieve populated the cache")
	}
}
