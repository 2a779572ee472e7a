// Package domain holds the entity types shared across connectors, agents,
// the orchestrator, and the HTTP layer. Types here describe semantic shape
// only — no persistence concerns leak in.
package domain

import "time"

// Severity is the incident severity enum.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Status is the incident lifecycle enum.
type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved:
		return true
	default:
		return false
	}
}

// Incident is the unit of triage. Created externally (CSV load at startup or
// an upstream connector) and mutated only through UpdateStatus.
type Incident struct {
	ID               string
	Title            string
	Description      string
	Severity         Severity
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	AffectedServices []string
	Assignee         string
}

// TicketKind distinguishes the two shapes a Ticket can take.
type TicketKind string

const (
	TicketKindSimilarIncident TicketKind = "similar_incident"
	TicketKindRelatedChange   TicketKind = "related_change"
)

// Ticket is a result item produced by the incident-management agent: either a
// similar historical incident (with its resolution) or a related change
// record surfaced through the incident connector rather than the change
// connector.
type Ticket struct {
	TicketID    string
	IncidentID  string
	Kind        TicketKind
	Resolution  string
	Description string
	Source      string

	// SimilarityScore is populated only for TicketKindSimilarIncident results;
	// it is the weighted-Jaccard score against the target incident.
	SimilarityScore float64
}

// KnowledgeDocument is a piece of knowledge-base content.
type KnowledgeDocument struct {
	DocID   string
	Title   string
	Content string
	Tags    []string

	// IncidentIDs associates the doc with one or more incidents, used only by
	// the mock/CSV-backed connector.
	IncidentIDs []string
}

// ChangeRecord is a deploy/change event. CorrelationScore is computed fresh
// per retrieval and is never a persisted attribute of the record itself.
type ChangeRecord struct {
	ChangeID    string
	Description string
	DeployedAt  time.Time
	Service     string

	CorrelationScore float64
}

// LogLevel is the severity enum for LogEntry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogEntry is a transient, per-incident log line produced on demand by the
// logs connector; never persisted by the core.
type LogEntry struct {
	Timestamp      time.Time
	Level          LogLevel
	Service        string
	Message        string
	ConfidenceScore float64
}

// EventSeverity is the severity enum for Event.
type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "info"
	EventSeverityWarning  EventSeverity = "warning"
	EventSeverityCritical EventSeverity = "critical"
)

// Event is a transient, per-incident platform event produced on demand.
type Event struct {
	Timestamp       time.Time
	Severity        EventSeverity
	Application     string
	Type            string
	Message         string
	ConfidenceScore float64
}
