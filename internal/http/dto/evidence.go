package dto

import (
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/orchestrator"
)

type TicketResponse struct {
	TicketID        string  `json:"ticket_id"`
	IncidentID      string  `json:"incident_id"`
	Kind            string  `json:"kind"`
	Resolution      string  `json:"resolution,omitempty"`
	Description     string  `json:"description"`
	Source          string  `json:"source"`
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

func toTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:        t.TicketID,
		IncidentID:      t.IncidentID,
		Kind:            string(t.Kind),
		Resolution:      t.Resolution,
		Description:     t.Description,
		Source:          t.Source,
		SimilarityScore: t.SimilarityScore,
	}
}

func toTicketResponses(ts []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, len(ts))
	for i, t := range ts {
		out[i] = toTicketResponse(t)
	}
	return out
}

type KnowledgeArticleResponse struct {
	DocID          string   `json:"doc_id"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Tags           []string `json:"tags,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
}

func toKnowledgeArticleResponses(as []domain.KnowledgeArticle) []KnowledgeArticleResponse {
	out := make([]KnowledgeArticleResponse, len(as))
	for i, a := range as {
		out[i] = KnowledgeArticleResponse{DocID: a.DocID, Title: a.Title, Content: a.Content, Tags: a.Tags, RelevanceScore: a.RelevanceScore}
	}
	return out
}

type ChangeRecordResponse struct {
	ChangeID         string  `json:"change_id"`
	Description      string  `json:"description"`
	DeployedAt       string  `json:"deployed_at"`
	Service          string  `json:"service"`
	CorrelationScore float64 `json:"correlation_score"`
}

func toChangeRecordResponse(c domain.ChangeRecord) ChangeRecordResponse {
	return ChangeRecordResponse{
		ChangeID:         c.ChangeID,
		Description:      c.Description,
		DeployedAt:       c.DeployedAt.Format("2006-01-02T15:04:05Z07:00"),
		Service:          c.Service,
		CorrelationScore: c.CorrelationScore,
	}
}

func toChangeRecordResponses(cs []domain.ChangeRecord) []ChangeRecordResponse {
	out := make([]ChangeRecordResponse, len(cs))
	for i, c := range cs {
		out[i] = toChangeRecordResponse(c)
	}
	return out
}

type LogEntryResponse struct {
	ItemID          string  `json:"item_id"`
	Timestamp       string  `json:"timestamp"`
	Level           string  `json:"level"`
	Service         string  `json:"service"`
	Message         string  `json:"message"`
	ConfidenceScore float64 `json:"confidence_score"`
}

func toLogEntryResponses(ls []domain.LogEntry) []LogEntryResponse {
	out := make([]LogEntryResponse, len(ls))
	for i, l := range ls {
		out[i] = LogEntryResponse{
			ItemID:          orchestrator.LogItemID(l),
			Timestamp:       l.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Level:           string(l.Level),
			Service:         l.Service,
			Message:         l.Message,
			ConfidenceScore: l.ConfidenceScore,
		}
	}
	return out
}

type EventResponse struct {
	ItemID          string  `json:"item_id"`
	Timestamp       string  `json:"timestamp"`
	Severity        string  `json:"severity"`
	Application     string  `json:"application"`
	Type            string  `json:"type"`
	Message         string  `json:"message"`
	ConfidenceScore float64 `json:"confidence_score"`
}

func toEventResponses(es []domain.Event) []EventResponse {
	out := make([]EventResponse, len(es))
	for i, e := range es {
		out[i] = EventResponse{
			ItemID:          orchestrator.EventItemID(e),
			Timestamp:       e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Severity:        string(e.Severity),
			Application:     e.Application,
			Type:            e.Type,
			Message:         e.Message,
			ConfidenceScore: e.ConfidenceScore,
		}
	}
	return out
}

// AgentDataResponse is the full evidence bundle returned by
// POST /incidents/:id/retrieve-context.
type AgentDataResponse struct {
	SimilarIncidents  []TicketResponse           `json:"similar_incidents,omitempty"`
	Resolutions       []TicketResponse           `json:"resolutions,omitempty"`
	QualitySummary    domain.QualitySummary      `json:"quality_summary"`
	KnowledgeArticles []KnowledgeArticleResponse `json:"knowledge_articles,omitempty"`
	TopSuspectChange  *ChangeRecordResponse      `json:"top_suspect_change,omitempty"`
	CorrelatedChanges []ChangeRecordResponse     `json:"correlated_changes,omitempty"`
	Logs              []LogEntryResponse         `json:"logs,omitempty"`
	Events            []EventResponse            `json:"events,omitempty"`
}

func ToAgentDataResponse(s *orchestrator.State) AgentDataResponse {
	var resp AgentDataResponse

	if s.ServiceNowResults != nil {
		resp.SimilarIncidents = toTicketResponses(s.ServiceNowResults.SimilarIncidents)
		resp.Resolutions = toTicketResponses(s.ServiceNowResults.Resolutions)
		resp.QualitySummary = s.ServiceNowResults.QualitySummary
	}
	if s.ConfluenceResults != nil {
		resp.KnowledgeArticles = toKnowledgeArticleResponses(s.ConfluenceResults.Documents)
	}
	if s.ChangeResults != nil {
		if s.ChangeResults.TopSuspect != nil {
			top := toChangeRecordResponse(*s.ChangeResults.TopSuspect)
			resp.TopSuspectChange = &top
		}
		resp.CorrelatedChanges = toChangeRecordResponses(s.ChangeResults.AllCorrelations)
	}
	if s.LogsResults != nil {
		resp.Logs = toLogEntryResponses(s.LogsResults.Logs)
	}
	if s.EventsResults != nil {
		resp.Events = toEventResponses(s.EventsResults.Events)
	}
	return resp
}

// ResolutionResponse is the structured output of POST /resolve.
type ResolutionResponse struct {
	IncidentID        string                     `json:"incident_id"`
	Summary           string                     `json:"summary"`
	ResolutionSteps   []string                   `json:"resolution_steps"`
	RelatedKnowledge  []KnowledgeArticleResponse `json:"related_knowledge,omitempty"`
	CorrelatedChanges []ChangeRecordResponse     `json:"correlated_changes,omitempty"`
	Confidence        float64                    `json:"confidence"`
}

func ToResolutionResponse(r domain.Resolution) ResolutionResponse {
	return ResolutionResponse{
		IncidentID:        r.IncidentID,
		Summary:           r.Summary,
		ResolutionSteps:   r.ResolutionSteps,
		RelatedKnowledge:  toKnowledgeArticleResponses(r.RelatedKnowledge),
		CorrelatedChanges: toChangeRecordResponses(r.CorrelatedChanges),
		Confidence:        r.Confidence,
	}
}

// ResolveRequest is the body of POST /resolve.
type ResolveRequest struct {
	IncidentID string `json:"incident_id" binding:"required"`
	UserQuery  string `json:"user_query"`
}

// ChatRequest is the body of POST /chat/stream.
type ChatRequest struct {
	IncidentID          string               `json:"incident_id" binding:"required"`
	Message             string               `json:"message" binding:"required"`
	ConversationHistory []domain.ChatMessage `json:"conversation_history,omitempty"`
	ExcludedItems       []ExcludeRequest     `json:"excluded_items,omitempty"`
}

// ExcludeRequest is the body of POST /incidents/:id/exclude-item, and doubles
// as the shape of ChatRequest's ad hoc, per-call excluded_items entries.
type ExcludeRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Kind   string `json:"kind" binding:"required"`
	Source string `json:"source"`
}

func (r ExcludeRequest) toDomain() domain.ExcludedItem {
	return domain.ExcludedItem{ItemID: r.ItemID, Kind: r.Kind, Source: r.Source}
}

func ToExcludedItems(reqs []ExcludeRequest) []domain.ExcludedItem {
	out := make([]domain.ExcludedItem, len(reqs))
	for i, r := range reqs {
		out[i] = r.toDomain()
	}
	return out
}
