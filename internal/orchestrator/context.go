package orchestrator

import (
	"fmt"
	"strings"

	"smartrecover.dev/engine/internal/domain"
)

const maxLogsInContext = 5
const maxEventsInContext = 5

// BuildContext renders a deterministic text view of the (already
// exclusion-filtered) evidence in State, in a fixed section order
// specifies. Empty sections are omitted entirely. Used for both synthesis
// and chat context.
func BuildContext(s *State, n int) string {
	if n <= 0 {
		n = 5
	}

	var b strings.Builder

	if s.ChangeResults != nil && s.ChangeResults.TopSuspect != nil {
		ch := s.ChangeResults.TopSuspect
		fmt.Fprintf(&b, "## Top Suspect Change\n%s deployed to %s at %s (correlation %.2f): %s\n\n",
			ch.ChangeID, ch.Service, ch.DeployedAt.Format("2006-01-02T15:04:05Z"), ch.CorrelationScore, ch.Description)
	}

	if s.ServiceNowResults != nil && len(s.ServiceNowResults.SimilarIncidents) > 0 {
		b.WriteString("## Similar Historical Incidents\n")
		for i, t := range limitTickets(s.ServiceNowResults.SimilarIncidents, n) {
			fmt.Fprintf(&b, "%d. [%s] similarity %.2f: %s\n", i+1, t.IncidentID, t.SimilarityScore, t.Description)
		}
		b.WriteString("\n")
	}

	if s.ServiceNowResults != nil && len(s.ServiceNowResults.Resolutions) > 0 {
		b.WriteString("## Previous Resolutions\n")
		for _, t := range s.ServiceNowResults.Resolutions {
			fmt.Fprintf(&b, "- [%s] %s\n", t.IncidentID, t.Resolution)
		}
		b.WriteString("\n")
	}

	if s.ConfluenceResults != nil && len(s.ConfluenceResults.Documents) > 0 {
		b.WriteString("## Relevant Knowledge Articles\n")
		for i, a := range limitArticles(s.ConfluenceResults.Documents, n) {
			fmt.Fprintf(&b, "%d. %s (relevance %.2f)\n%s\n", i+1, a.Title, a.RelevanceScore, a.Content)
		}
		b.WriteString("\n")
	}

	if s.LogsResults != nil && len(s.LogsResults.Logs) > 0 {
		b.WriteString("## Logs\n")
		for _, l := range limitLogs(s.LogsResults.Logs, maxLogsInContext) {
			fmt.Fprintf(&b, "- [%s] %s: %s (confidence %.2f)\n", l.Level, l.Service, l.Message, l.ConfidenceScore)
		}
		b.WriteString("\n")
	}

	if s.EventsResults != nil && len(s.EventsResults.Events) > 0 {
		b.WriteString("## Events\n")
		for _, e := range limitEvents(s.EventsResults.Events, maxEventsInContext) {
			fmt.Fprintf(&b, "- [%s] %s %s: %s (confidence %.2f)\n", e.Severity, e.Application, e.Type, e.Message, e.ConfidenceScore)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary Counts\n")
	fmt.Fprintf(&b, "similar_incidents=%d resolutions=%d knowledge_articles=%d logs=%d events=%d\n",
		countTickets(s.ServiceNowResults), countResolutions(s.ServiceNowResults), countArticles(s.ConfluenceResults),
		countLogs(s.LogsResults), countEvents(s.EventsResults))

	return b.String()
}

func limitTickets(t []domain.Ticket, n int) []domain.Ticket {
	if len(t) > n {
		return t[:n]
	}
	return t
}

func limitArticles(a []domain.KnowledgeArticle, n int) []domain.KnowledgeArticle {
	if len(a) > n {
		return a[:n]
	}
	return a
}

func limitLogs(l []domain.LogEntry, n int) []domain.LogEntry {
	if len(l) > n {
		return l[:n]
	}
	return l
}

func limitEvents(e []domain.Event, n int) []domain.Event {
	if len(e) > n {
		return e[:n]
	}
	return e
}

func countTickets(r *domain.IncidentManagementResult) int {
	if r == nil {
		return 0
	}
	return len(r.SimilarIncidents)
}

func countResolutions(r *domain.IncidentManagementResult) int {
	if r == nil {
		return 0
	}
	return len(r.Resolutions)
}

func countArticles(r *domain.KnowledgeBaseResult) int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

func countLogs(r *domain.LogsResult) int {
	if r == nil {
		return 0
	}
	return len(r.Logs)
}

func countEvents(r *domain.EventsResult) int {
	if r == nil {
		return 0
	}
	return len(r.Events)
}
