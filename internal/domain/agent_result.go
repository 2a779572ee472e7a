package domain

import "time"

// QualityAssessment scores a single similar-incident ticket, plus the
// aggregate over a set of tickets.
type QualityAssessment struct {
	Score  float64
	Level  string // "good" | "warning" | "poor"
	Issues []string
}

type QualitySummary struct {
	AverageScore float64
	GoodCount    int
	WarningCount int
	PoorCount    int
}

// IncidentManagementResult is the incident-management agent's output.
type IncidentManagementResult struct {
	Source            string
	IncidentID        string
	SimilarIncidents  []Ticket
	Qualities         map[string]QualityAssessment // keyed by TicketID
	QualitySummary    QualitySummary
	Resolutions       []Ticket
}

// KnowledgeArticle is a ranked, truncated knowledge-document result.
type KnowledgeArticle struct {
	Title          string
	Content        string
	Tags           []string
	RelevanceScore float64
	DocID          string
}

// KnowledgeBaseResult is the knowledge-base agent's output.
type KnowledgeBaseResult struct {
	Source                  string
	IncidentID              string
	Documents               []KnowledgeArticle
	KnowledgeBaseArticles   []KnowledgeArticle // alias view used by context construction; same data
}

// ChangeCorrelationResult is the change-correlation agent's output.
type ChangeCorrelationResult struct {
	Source                 string
	IncidentID              string
	TopSuspect              *ChangeRecord
	HighCorrelationChanges  []ChangeRecord
	MediumCorrelationChanges []ChangeRecord
	AllCorrelations         []ChangeRecord
}

// LogsResult is the logs agent's output.
type LogsResult struct {
	Source      string
	IncidentID  string
	Logs        []LogEntry
	TotalCount  int
	ErrorCount  int
	WarningCount int
}

// EventsResult is the events agent's output.
type EventsResult struct {
	Source       string
	IncidentID   string
	Events       []Event
	TotalCount   int
	CriticalCount int
	WarningCount  int
}

// AgentData is the combined set of all five AgentResults for one incident —
// the unit the TTL cache stores and chat reuses.
type AgentData struct {
	ServiceNowResults  *IncidentManagementResult
	ConfluenceResults  *KnowledgeBaseResult
	ChangeResults      *ChangeCorrelationResult
	LogsResults        *LogsResult
	EventsResults      *EventsResult
}

// CacheEntry is what the TTL cache stores keyed by incident ID.
type CacheEntry struct {
	IncidentID string
	Data       AgentData
	ExpiresAt  time.Time
}

// ExcludedItem is a single (item_id, kind, source) triple a user has marked
// irrelevant for an incident.
type ExcludedItem struct {
	ItemID string
	Kind   string
	Source string
}

// PromptRecord is a single agent's editable system prompt state.
type PromptRecord struct {
	AgentName string
	Default   string
	Current   string
}

func (p PromptRecord) IsCustom() bool { return p.Current != p.Default }

// PromptType distinguishes synthesis calls from chat calls in the prompt log.
type PromptType string

const (
	PromptTypeSynthesis PromptType = "synthesis"
	PromptTypeChat      PromptType = "chat"
)

// PromptLogEntry is one append-only record of an LLM invocation.
type PromptLogEntry struct {
	ID                 int64
	Timestamp          time.Time
	IncidentID         string
	PromptType         PromptType
	SystemPrompt       string
	UserMessage        string
	ContextSummary     string
	ConversationHistory []ChatMessage
}

// ChatMessage is one turn of conversation history passed to /chat/stream.
type ChatMessage struct {
	Role    string // "user" | "assistant"
	Content string
}

// Resolution is the structured output of /resolve.
type Resolution struct {
	IncidentID        string
	Summary           string
	ResolutionSteps   []string
	RelatedKnowledge  []KnowledgeArticle
	CorrelatedChanges []ChangeRecord
	Confidence        float64
}
