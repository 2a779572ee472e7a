package orchestrator

import (
	"fmt"

	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/store"
)

// LogItemID and EventItemID synthesize a stable identity for log/event
// entries, which the connector layer doesn't assign an explicit ID to
// (unlike tickets, documents, and changes). Deterministic connector output
// means the same entry always produces the same key across requests, which
// is all the exclusion set needs.
func LogItemID(l domain.LogEntry) string {
	return fmt.Sprintf("%s|%s|%d", l.Service, l.Message, l.Timestamp.Unix())
}

func EventItemID(e domain.Event) string {
	return fmt.Sprintf("%s|%s|%d", e.Application, e.Message, e.Timestamp.Unix())
}

// ApplyExclusions removes any item whose item_id appears in the incident's
// persisted exclusion set from the relevant AgentResult lists, before the
// state is handed to context construction / synthesis.
func ApplyExclusions(s *State, exclusions *store.ExclusionStore) {
	if exclusions == nil {
		return
	}
	applyExclusionFunc(s, func(itemID string) bool { return exclusions.IsExcluded(s.IncidentID, itemID) })
}

// ApplyAdHocExclusions additionally removes items in extra from state
// without persisting them — used for the one-off excluded_items list
// accepted by a single chat request.
func ApplyAdHocExclusions(s *State, extra []domain.ExcludedItem) {
	if len(extra) == 0 {
		return
	}
	excluded := make(map[string]bool, len(extra))
	for _, e := range extra {
		excluded[e.ItemID] = true
	}
	applyExclusionFunc(s, func(itemID string) bool { return excluded[itemID] })
}

// applyExclusionFunc filters copies of each result: State's result pointers
// are shared with the TTL cache, which keeps the unfiltered evidence.
func applyExclusionFunc(s *State, excluded func(itemID string) bool) {
	if s.ServiceNowResults != nil {
		r := *s.ServiceNowResults
		s.ServiceNowResults = &r
		s.ServiceNowResults.SimilarIncidents = filterTickets(s.ServiceNowResults.SimilarIncidents, excluded)
		s.ServiceNowResults.Resolutions = filterTickets(s.ServiceNowResults.Resolutions, excluded)
	}
	if s.ConfluenceResults != nil {
		r := *s.ConfluenceResults
		s.ConfluenceResults = &r
		s.ConfluenceResults.Documents = filterArticles(s.ConfluenceResults.Documents, excluded)
		s.ConfluenceResults.KnowledgeBaseArticles = s.ConfluenceResults.Documents
	}
	if s.ChangeResults != nil {
		r := *s.ChangeResults
		s.ChangeResults = &r
		s.ChangeResults.AllCorrelations = filterChanges(s.ChangeResults.AllCorrelations, excluded)
		s.ChangeResults.HighCorrelationChanges = filterChanges(s.ChangeResults.HighCorrelationChanges, excluded)
		s.ChangeResults.MediumCorrelationChanges = filterChanges(s.ChangeResults.MediumCorrelationChanges, excluded)
		if s.ChangeResults.TopSuspect != nil && excluded(s.ChangeResults.TopSuspect.ChangeID) {
			s.ChangeResults.TopSuspect = nil
			if len(s.ChangeResults.HighCorrelationChanges) > 0 && s.ChangeResults.HighCorrelationChanges[0].CorrelationScore >= changeTopSuspectThreshold {
				next := s.ChangeResults.HighCorrelationChanges[0]
				s.ChangeResults.TopSuspect = &next
			}
		}
	}
	if s.LogsResults != nil {
		r := *s.LogsResults
		s.LogsResults = &r
		s.LogsResults.Logs = filterLogs(s.LogsResults.Logs, excluded)
	}
	if s.EventsResults != nil {
		r := *s.EventsResults
		s.EventsResults = &r
		s.EventsResults.Events = filterEvents(s.EventsResults.Events, excluded)
	}
}

func filterTickets(in []domain.Ticket, excluded func(string) bool) []domain.Ticket {
	var out []domain.Ticket
	for _, t := range in {
		if !excluded(t.TicketID) {
			out = append(out, t)
		}
	}
	return out
}

func filterArticles(in []domain.KnowledgeArticle, excluded func(string) bool) []domain.KnowledgeArticle {
	var out []domain.KnowledgeArticle
	for _, a := range in {
		if !excluded(a.DocID) {
			out = append(out, a)
		}
	}
	return out
}

func filterChanges(in []domain.ChangeRecord, excluded func(string) bool) []domain.ChangeRecord {
	var out []domain.ChangeRecord
	for _, c := range in {
		if !excluded(c.ChangeID) {
			out = append(out, c)
		}
	}
	return out
}

func filterLogs(in []domain.LogEntry, excluded func(string) bool) []domain.LogEntry {
	var out []domain.LogEntry
	for _, l := range in {
		if !excluded(LogItemID(l)) {
			out = append(out, l)
		}
	}
	return out
}

func filterEvents(in []domain.Event, excluded func(string) bool) []domain.Event {
	var out []domain.Event
	for _, e := range in {
		if !excluded(EventItemID(e)) {
			out = append(out, e)
		}
	}
	return out
}
