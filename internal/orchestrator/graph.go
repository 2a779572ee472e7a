package orchestrator

import (
	"context"
	"log/slog"

	"smartrecover.dev/engine/internal/cache"
	"smartrecover.dev/engine/internal/config"
	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/llm"
	"smartrecover.dev/engine/internal/store"
)

// Graph wires the five agents, the LLM manager, and the supporting stores
// into the sequential evidence-gathering + synthesis pipeline described in
// Topology: incident-loader → servicenow →
// knowledge-base → change-correlation → logs → events → synthesis.
type Graph struct {
	incidents  connector.IncidentConnector
	kb         connector.KnowledgeBaseConnector
	llmManager *llm.Manager

	incidentAgent  *IncidentManagementAgent
	knowledgeAgent *KnowledgeBaseAgent
	changeAgent    *ChangeCorrelationAgent
	logsAgent      *LogsAgent
	eventsAgent    *EventsAgent

	cache      *cache.TTLCache
	exclusions *store.ExclusionStore
	prompts    *store.PromptStore

	contextSectionLimitN int
}

func NewGraph(incidents connector.IncidentConnector, kb connector.KnowledgeBaseConnector, llmManager *llm.Manager,
	cache *cache.TTLCache, exclusions *store.ExclusionStore, prompts *store.PromptStore, agentsCfg config.AgentsConfig) *Graph {
	return &Graph{
		incidents:            incidents,
		kb:                   kb,
		llmManager:           llmManager,
		incidentAgent:        NewIncidentManagementAgent(incidents, agentsCfg.SimilarIncidentsK, agentsCfg.SimilarityThreshold),
		knowledgeAgent:       NewKnowledgeBaseAgent(kb, agentsCfg.KnowledgeDocsK),
		changeAgent:          NewChangeCorrelationAgent(incidents, agentsCfg.ChangeWindowBefore, agentsCfg.ChangeWindowAfter),
		logsAgent:            NewLogsAgent(incidents),
		eventsAgent:          NewEventsAgent(incidents),
		cache:                cache,
		exclusions:           exclusions,
		prompts:              prompts,
		contextSectionLimitN: agentsCfg.ContextSectionLimitN,
	}
}

func (g *Graph) agents() []Agent {
	return []Agent{g.incidentAgent, g.knowledgeAgent, g.changeAgent, g.logsAgent, g.eventsAgent}
}

// Retrieve runs the evidence-gathering nodes only (no synthesis), caching
// the result. Used directly by /retrieve-context and as the first half of
// Resolve.
func (g *Graph) Retrieve(ctx context.Context, incident domain.Incident, userQuery string) *State {
	if cached, ok := g.cache.Get(incident.ID); ok {
		s := FromData(incident, cached)
		s.UserQuery = userQuery
		g.recordReturned(s)
		return s
	}

	s := &State{IncidentID: incident.ID, UserQuery: userQuery, Incident: incident}

	if result, err := g.incidentAgent.Query(ctx, incident); err != nil {
		slog.WarnContext(ctx, "incident-management agent failed, degrading gracefully", "incident_id", incident.ID, "error", err)
	} else {
		s.ServiceNowResults = result
	}

	if result, err := g.knowledgeAgent.Query(ctx, incident); err != nil {
		slog.WarnContext(ctx, "knowledge-base agent failed, degrading gracefully", "incident_id", incident.ID, "error", err)
	} else {
		s.ConfluenceResults = result
	}

	if result, err := g.changeAgent.Query(ctx, incident); err != nil {
		slog.WarnContext(ctx, "change-correlation agent failed, degrading gracefully", "incident_id", incident.ID, "error", err)
	} else {
		s.ChangeResults = result
	}

	if result, err := g.logsAgent.Query(ctx, incident); err != nil {
		slog.WarnContext(ctx, "logs agent failed, degrading gracefully", "incident_id", incident.ID, "error", err)
	} else {
		s.LogsResults = result
	}

	if result, err := g.eventsAgent.Query(ctx, incident); err != nil {
		slog.WarnContext(ctx, "events agent failed, degrading gracefully", "incident_id", incident.ID, "error", err)
	} else {
		s.EventsResults = result
	}

	g.recordReturned(s)
	g.cache.Put(incident.ID, s.Data())
	return s
}

// recordReturned feeds every item actually surfaced by a successful agent
// into the exclusion store's accuracy bookkeeping, regardless of whether
// this call was a fresh retrieval or a cache hit — a re-surfaced item still
// counts toward returned.
func (g *Graph) recordReturned(s *State) {
	if g.exclusions == nil {
		return
	}
	if s.ServiceNowResults != nil {
		for _, t := range s.ServiceNowResults.SimilarIncidents {
			g.exclusions.RecordReturned(store.CategorySimilarIncidents, t.TicketID, string(t.Kind), t.Source)
		}
		for _, t := range s.ServiceNowResults.Resolutions {
			g.exclusions.RecordReturned(store.CategorySimilarIncidents, t.TicketID, string(t.Kind), t.Source)
		}
	}
	if s.ConfluenceResults != nil {
		for _, a := range s.ConfluenceResults.Documents {
			g.exclusions.RecordReturned(store.CategoryKnowledgeDocuments, a.DocID, "knowledge_document", s.ConfluenceResults.Source)
		}
	}
	if s.ChangeResults != nil {
		for _, c := range s.ChangeResults.AllCorrelations {
			g.exclusions.RecordReturned(store.CategoryChanges, c.ChangeID, "change", s.ChangeResults.Source)
		}
	}
	if s.LogsResults != nil {
		for _, l := range s.LogsResults.Logs {
			g.exclusions.RecordReturned(store.CategoryLogs, LogItemID(l), "log", s.LogsResults.Source)
		}
	}
	if s.EventsResults != nil {
		for _, e := range s.EventsResults.Events {
			g.exclusions.RecordReturned(store.CategoryEvents, EventItemID(e), "event", s.EventsResults.Source)
		}
	}
}

// Resolve runs the full graph: retrieval, exclusion filtering, and
// synthesis.
func (g *Graph) Resolve(ctx context.Context, incident domain.Incident, userQuery string) (domain.Resolution, error) {
	s := g.Retrieve(ctx, incident, userQuery)
	ApplyExclusions(s, g.exclusions)
	return Synthesize(ctx, g.llmManager, g.prompts, g.agents(), s, g.contextSectionLimitN)
}

// ContextFor reuses cached (or freshly retrieved) evidence and renders the
// deterministic text context, applying exclusions first — used by
// /retrieve-context and as the basis for /chat/stream.
func (g *Graph) ContextFor(ctx context.Context, incident domain.Incident) *State {
	s := g.Retrieve(ctx, incident, "")
	ApplyExclusions(s, g.exclusions)
	return s
}

// Details returns the incident's cached evidence, or nil if nothing has been
// retrieved for it yet. Unlike Retrieve/ContextFor, a cache miss never runs
// the agent graph — this backs the read-only /incidents/{id}/details view.
func (g *Graph) Details(incident domain.Incident) *State {
	cached, ok := g.cache.Get(incident.ID)
	if !ok {
		return nil
	}
	s := FromData(incident, cached)
	ApplyExclusions(s, g.exclusions)
	return s
}

// DefaultPrompts returns each agent's name and default_prompt, for seeding
// the prompt store at startup.
func (g *Graph) DefaultPrompts() map[string]string {
	prompts := map[string]string{
		AgentSynthesis: defaultSynthesisPrompt,
		AgentChat:      defaultChatPrompt,
	}
	for _, a := range g.agents() {
		prompts[a.Name()] = a.DefaultPrompt()
	}
	return prompts
}
