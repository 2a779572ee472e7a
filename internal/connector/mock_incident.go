package connector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"smartrecover.dev/engine/internal/csvutil"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
	"smartrecover.dev/engine/internal/store"
)

// MockIncidentConnector is the CSV-backed IncidentConnector variant. It
// implements every operation deterministically: the same
// incident and config always produce the same similar-incidents, changes,
// logs, and events.
type MockIncidentConnector struct {
	incidents *store.IncidentStore
	tickets   []ticketRow   // servicenow_tickets.csv rows
	changes   []domain.ChangeRecord
}

type ticketRow struct {
	incidentID string
	ticket     domain.Ticket
}

func NewMockIncidentConnector(ctx context.Context, incidents *store.IncidentStore, ticketsCSVPath, changesCSVPath string) (*MockIncidentConnector, error) {
	c := &MockIncidentConnector{incidents: incidents}

	if ticketsCSVPath != "" {
		rows, err := csvutil.ReadRecords(ctx, ticketsCSVPath)
		if err != nil {
			return nil, fmt.Errorf("loading servicenow tickets: %w", err)
		}
		for _, row := range rows {
			kind := domain.TicketKind(strings.TrimSpace(row["type"]))
			if kind != domain.TicketKindSimilarIncident && kind != domain.TicketKindRelatedChange {
				kind = domain.TicketKindSimilarIncident
			}
			c.tickets = append(c.tickets, ticketRow{
				incidentID: strings.TrimSpace(row["incident_id"]),
				ticket: domain.Ticket{
					TicketID:    row["ticket_id"],
					IncidentID:  strings.TrimSpace(row["incident_id"]),
					Kind:        kind,
					Resolution:  row["resolution"],
					Description: row["description"],
					Source:      row["source"],
				},
			})
		}
	}

	if changesCSVPath != "" {
		rows, err := csvutil.ReadRecords(ctx, changesCSVPath)
		if err != nil {
			return nil, fmt.Errorf("loading change correlations: %w", err)
		}
		for _, row := range rows {
			deployedAt, _ := time.Parse(time.RFC3339, strings.TrimSpace(row["deployed_at"]))
			c.changes = append(c.changes, domain.ChangeRecord{
				ChangeID:    row["change_id"],
				Description: row["description"],
				DeployedAt:  deployedAt,
			})
		}
	}

	return c, nil
}

func (c *MockIncidentConnector) Name() string { return "mock" }

func (c *MockIncidentConnector) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	return c.incidents.List(), nil
}

func (c *MockIncidentConnector) GetIncident(ctx context.Context, id string) (domain.Incident, error) {
	return c.incidents.Get(id)
}

func (c *MockIncidentConnector) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Incident, error) {
	return c.incidents.UpdateStatus(id, status)
}

// FindSimilar implements the selection policy from : only resolved
// candidates, never the target itself, weighted-Jaccard >= threshold,
// top-K descending, ties broken by id ascending. Each ticket returned is
// attached to the matching incident's ServiceNow resolution ticket if one
// exists for that incident ID.
func (c *MockIncidentConnector) FindSimilar(ctx context.Context, incident domain.Incident, threshold float64, k int) ([]domain.Ticket, error) {
	candidates := c.incidents.ResolvedCandidates(incident.ID)

	type scored struct {
		incidentID string
		score      float64
	}
	var hits []scored
	for _, cand := range candidates {
		score := similarity.IncidentSimilarity(incident, cand)
		if score >= threshold {
			hits = append(hits, scored{cand.ID, score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score == hits[j].score {
			return hits[i].incidentID < hits[j].incidentID
		}
		return hits[i].score > hits[j].score
	})

	var out []domain.Ticket
	for _, h := range hits {
		if len(out) >= k {
			break
		}
		t := c.ticketForIncident(h.incidentID)
		t.SimilarityScore = h.score
		if t.Description == "" && t.Resolution == "" {
			// No ticket record for this incident; still filtered below per
			// the invariant that either description or resolution must be
			// present — skip it rather than returning an empty ticket.
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *MockIncidentConnector) ticketForIncident(incidentID string) domain.Ticket {
	for _, row := range c.tickets {
		if row.incidentID == incidentID && row.ticket.Kind == domain.TicketKindSimilarIncident {
			return row.ticket
		}
	}
	return domain.Ticket{IncidentID: incidentID, Kind: domain.TicketKindSimilarIncident}
}

// FindChanges returns the change records deployed within the window, with
// CorrelationScore left unset. This mock-layer method returns raw
// candidates only; the change-correlation agent (internal/orchestrator)
// scores them and partitions them into top-suspect/high/medium.
func (c *MockIncidentConnector) FindChanges(ctx context.Context, incident domain.Incident, window ChangeWindow) ([]domain.ChangeRecord, error) {
	windowStart := incident.CreatedAt.Add(-window.Before)
	windowEnd := incident.CreatedAt.Add(window.After)

	var out []domain.ChangeRecord
	for _, ch := range c.changes {
		if ch.DeployedAt.Before(windowStart) || ch.DeployedAt.After(windowEnd) {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

// FindLogs synthesizes deterministic log entries from the incident's
// affected services and creation time — the mock connector has no log
// store, so it must still implement this deterministically
func (c *MockIncidentConnector) FindLogs(ctx context.Context, incident domain.Incident) ([]domain.LogEntry, error) {
	if len(incident.AffectedServices) == 0 {
		return nil, nil
	}

	templates := []struct {
		level   domain.LogLevel
		message string
	}{
		{domain.LogLevelError, "connection timeout while calling downstream dependency"},
		{domain.LogLevelError, "unhandled exception in request handler"},
		{domain.LogLevelWarn, "retrying request after transient failure"},
		{domain.LogLevelInfo, "request completed with elevated latency"},
	}

	var out []domain.LogEntry
	for i, svc := range incident.AffectedServices {
		tmpl := templates[i%len(templates)]
		out = append(out, domain.LogEntry{
			Timestamp: incident.CreatedAt.Add(time.Duration(-i-1) * time.Minute),
			Level:     tmpl.level,
			Service:   svc,
			Message:   fmt.Sprintf("%s: %s", svc, tmpl.message),
		})
	}
	return out, nil
}

// FindEvents synthesizes deterministic platform events, mirroring FindLogs.
func (c *MockIncidentConnector) FindEvents(ctx context.Context, incident domain.Incident) ([]domain.Event, error) {
	if len(incident.AffectedServices) == 0 {
		return nil, nil
	}

	templates := []struct {
		severity domain.EventSeverity
		kind     string
		message  string
	}{
		{domain.EventSeverityCritical, "pod_crash", "pod restarted after repeated crash loop"},
		{domain.EventSeverityWarning, "deploy_rollback", "previous deploy rolled back automatically"},
		{domain.EventSeverityInfo, "scale_event", "autoscaler added replicas under load"},
	}

	var out []domain.Event
	for i, svc := range incident.AffectedServices {
		tmpl := templates[i%len(templates)]
		out = append(out, domain.Event{
			Timestamp:   incident.CreatedAt.Add(time.Duration(-i-1) * time.Minute),
			Severity:    tmpl.severity,
			Application: svc,
			Type:        tmpl.kind,
			Message:     fmt.Sprintf("%s: %s", svc, tmpl.message),
		})
	}
	return out, nil
}
