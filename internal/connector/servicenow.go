package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smartrecover.dev/engine/internal/domain"
)

// ServiceNowConnector is the REST IncidentConnector variant. It has no SDK
// anywhere in this codebase's dependency lineage (the pack has no
// ServiceNow client), so it talks to the Table API directly over
// net/http — the same approach taken for the connectors with genuinely no
// available library (Gemini, Ollama; see internal/llm).
type ServiceNowConnector struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
}

func NewServiceNowConnector(baseURL, user, password string) *ServiceNowConnector {
	return &ServiceNowConnector{
		baseURL:  baseURL,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ServiceNowConnector) Name() string { return "servicenow" }

func (c *ServiceNowConnector) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.client.Do(req)
}

func (c *ServiceNowConnector) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/now/table/incident", nil)
	if err != nil {
		return nil, domain.UpstreamFailure("servicenow list incidents failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, domain.UpstreamFailure(fmt.Sprintf("servicenow returned status %d", resp.StatusCode), nil)
	}
	var parsed struct {
		Result []snIncident `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.UpstreamFailure("decoding servicenow response", err)
	}
	out := make([]domain.Incident, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *ServiceNowConnector) GetIncident(ctx context.Context, id string) (domain.Incident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/now/table/incident/"+id, nil)
	if err != nil {
		return domain.Incident{}, domain.UpstreamFailure("servicenow get incident failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.Incident{}, domain.NotFound(fmt.Sprintf("incident %s not found in servicenow", id))
	}
	if resp.StatusCode >= 400 {
		return domain.Incident{}, domain.UpstreamFailure(fmt.Sprintf("servicenow returned status %d", resp.StatusCode), nil)
	}
	var parsed struct {
		Result snIncident `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Incident{}, domain.UpstreamFailure("decoding servicenow response", err)
	}
	return parsed.Result.toDomain(), nil
}

func (c *ServiceNowConnector) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Incident, error) {
	if !status.Valid() {
		return domain.Incident{}, domain.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}
	resp, err := c.do(ctx, http.MethodPatch, "/api/now/table/incident/"+id, map[string]string{"state": string(status)})
	if err != nil {
		return domain.Incident{}, domain.UpstreamFailure("servicenow update status failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.Incident{}, domain.UpstreamFailure(fmt.Sprintf("servicenow returned status %d", resp.StatusCode), nil)
	}
	return c.GetIncident(ctx, id)
}

// FindSimilar delegates to ServiceNow's own similarity search endpoint when
// available; since the Table API has no such endpoint, this variant simply
// returns domain.ErrNotSupported so the agent falls back to an empty result
// rather than fabricating a ranking ServiceNow doesn't provide.
func (c *ServiceNowConnector) FindSimilar(ctx context.Context, incident domain.Incident, threshold float64, k int) ([]domain.Ticket, error) {
	return nil, domain.ErrNotSupported
}

func (c *ServiceNowConnector) FindChanges(ctx context.Context, incident domain.Incident, window ChangeWindow) ([]domain.ChangeRecord, error) {
	return nil, domain.ErrNotSupported
}

// FindLogs and FindEvents are not supported by ServiceNow (: connectors
// MAY return not-supported for log/event retrieval).
func (c *ServiceNowConnector) FindLogs(ctx context.Context, incident domain.Incident) ([]domain.LogEntry, error) {
	return nil, domain.ErrNotSupported
}

func (c *ServiceNowConnector) FindEvents(ctx context.Context, incident domain.Incident) ([]domain.Event, error) {
	return nil, domain.ErrNotSupported
}

type snIncident struct {
	SysID       string `json:"sys_id"`
	ShortDesc   string `json:"short_description"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	State       string `json:"state"`
	OpenedAt    string `json:"opened_at"`
	AssignedTo  string `json:"assigned_to"`
}

func (r snIncident) toDomain() domain.Incident {
	createdAt, _ := time.Parse("2006-01-02 15:04:05", r.OpenedAt)
	return domain.Incident{
		ID:          r.SysID,
		Title:       r.ShortDesc,
		Description: r.Description,
		Severity:    mapServiceNowSeverity(r.Severity),
		Status:      mapServiceNowState(r.State),
		CreatedAt:   createdAt,
		Assignee:    r.AssignedTo,
	}
}

func mapServiceNowSeverity(s string) domain.Severity {
	switch s {
	case "1":
		return domain.SeverityCritical
	case "2":
		return domain.SeverityHigh
	case "3":
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func mapServiceNowState(s string) domain.Status {
	switch s {
	case "6", "7":
		return domain.StatusResolved
	case "2":
		return domain.StatusInvestigating
	default:
		return domain.StatusOpen
	}
}
