// Package connector implements the IncidentConnector and
// KnowledgeBaseConnector capability sets and their variants. Grounded
// on this codebase's store/repository factory idiom (one constructor per
// variant, selected by a tagged config record) generalized from "one
// constructor per entity" to "one constructor per connector variant".
package connector

import (
	"context"
	"time"

	"smartrecover.dev/engine/internal/domain"
)

// ChangeWindow bounds a change-correlation search: [created_at - Before,
// created_at + After].
type ChangeWindow struct {
	Before time.Duration
	After  time.Duration
}

// IncidentConnector is the capability set every connector variant implements. Variants: Mock
// (CSV-backed, deterministic, implements everything), ServiceNow/Jira (REST,
// MAY return domain.ErrNotSupported for log/event retrieval).
type IncidentConnector interface {
	ListIncidents(ctx context.Context) ([]domain.Incident, error)
	GetIncident(ctx context.Context, id string) (domain.Incident, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Incident, error)
	FindSimilar(ctx context.Context, incident domain.Incident, threshold float64, k int) ([]domain.Ticket, error)
	FindChanges(ctx context.Context, incident domain.Incident, window ChangeWindow) ([]domain.ChangeRecord, error)
	FindLogs(ctx context.Context, incident domain.Incident) ([]domain.LogEntry, error)
	FindEvents(ctx context.Context, incident domain.Incident) ([]domain.Event, error)

	Name() string
}

// KnowledgeBaseConnector is the capability set every connector variant implements. Variants:
// Mock (CSV + markdown/front-matter directory), Confluence (REST).
type KnowledgeBaseConnector interface {
	Search(ctx context.Context, queryTerms string, k int) ([]domain.KnowledgeDocument, error)
	Get(ctx context.Context, docID string) (domain.KnowledgeDocument, error)

	Name() string
}
