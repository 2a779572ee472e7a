package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smartrecover.dev/engine/internal/domain"
)

// JiraConnector is the REST IncidentConnector variant backed by Jira Cloud's
// issue search API. Like ServiceNowConnector, it has no SDK in this
// codebase's dependency lineage and talks to the REST API directly.
type JiraConnector struct {
	baseURL string
	user    string
	token   string
	client  *http.Client
}

func NewJiraConnector(baseURL, user, token string) *JiraConnector {
	return &JiraConnector{
		baseURL: baseURL,
		user:    user,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *JiraConnector) Name() string { return "jira" }

func (c *JiraConnector) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.token)
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

func (c *JiraConnector) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rest/api/2/search?jql=issuetype=Incident")
	if err != nil {
		return nil, domain.UpstreamFailure("jira list incidents failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, domain.UpstreamFailure(fmt.Sprintf("jira returned status %d", resp.StatusCode), nil)
	}
	var parsed struct {
		Issues []jiraIssue `json:"issues"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.UpstreamFailure("decoding jira response", err)
	}
	out := make([]domain.Incident, 0, len(parsed.Issues))
	for _, i := range parsed.Issues {
		out = append(out, i.toDomain())
	}
	return out, nil
}

func (c *JiraConnector) GetIncident(ctx context.Context, id string) (domain.Incident, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rest/api/2/issue/"+id)
	if err != nil {
		return domain.Incident{}, domain.UpstreamFailure("jira get incident failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.Incident{}, domain.NotFound(fmt.Sprintf("incident %s not found in jira", id))
	}
	if resp.StatusCode >= 400 {
		return domain.Incident{}, domain.UpstreamFailure(fmt.Sprintf("jira returned status %d", resp.StatusCode), nil)
	}
	var issue jiraIssue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return domain.Incident{}, domain.UpstreamFailure("decoding jira response", err)
	}
	return issue.toDomain(), nil
}

func (c *JiraConnector) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Incident, error) {
	if !status.Valid() {
		return domain.Incident{}, domain.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}
	// Jira transitions are workflow-specific and not self-describing from the
	// REST shape alone; surfacing this as upstream-failure rather than
	// guessing a transition id keeps behavior honest.
	return domain.Incident{}, domain.UpstreamFailure("jira status transitions require a workflow-specific transition id", nil)
}

func (c *JiraConnector) FindSimilar(ctx context.Context, incident domain.Incident, threshold float64, k int) ([]domain.Ticket, error) {
	return nil, domain.ErrNotSupported
}

func (c *JiraConnector) FindChanges(ctx context.Context, incident domain.Incident, window ChangeWindow) ([]domain.ChangeRecord, error) {
	return nil, domain.ErrNotSupported
}

func (c *JiraConnector) FindLogs(ctx context.Context, incident domain.Incident) ([]domain.LogEntry, error) {
	return nil, domain.ErrNotSupported
}

func (c *JiraConnector) FindEvents(ctx context.Context, incident domain.Incident) ([]domain.Event, error) {
	return nil, domain.ErrNotSupported
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Priority    struct {
			Name string `json:"name"`
		} `json:"priority"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		Created  string `json:"created"`
		Assignee struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
	} `json:"fields"`
}

func (i jiraIssue) toDomain() domain.Incident {
	createdAt, _ := time.Parse("2006-01-02T15:04:05.000-0700", i.Fields.Created)
	return domain.Incident{
		ID:          i.Key,
		Title:       i.Fields.Summary,
		Description: i.Fields.Description,
		Severity:    mapJiraPriority(i.Fields.Priority.Name),
		Status:      mapJiraStatus(i.Fields.Status.Name),
		CreatedAt:   createdAt,
		Assignee:    i.Fields.Assignee.DisplayName,
	}
}

func mapJiraPriority(p string) domain.Severity {
	switch p {
	case "Highest", "Blocker":
		return domain.SeverityCritical
	case "High":
		return domain.SeverityHigh
	case "Medium":
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func mapJiraStatus(s string) domain.Status {
	switch s {
	case "Done", "Resolved", "Closed":
		return domain.StatusResolved
	case "In Progress":
		return domain.StatusInvestigating
	default:
		return domain.StatusOpen
	}
}
