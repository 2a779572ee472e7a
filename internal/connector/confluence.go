package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smartrecover.dev/engine/internal/domain"
)

// ConfluenceConnector is the REST KnowledgeBaseConnector variant, backed by
// Confluence Cloud's content search API.
type ConfluenceConnector struct {
	baseURL string
	user    string
	token   string
	client  *http.Client
}

func NewConfluenceConnector(baseURL, user, token string) *ConfluenceConnector {
	return &ConfluenceConnector{
		baseURL: baseURL,
		user:    user,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ConfluenceConnector) Name() string { return "confluence" }

func (c *ConfluenceConnector) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.token)
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

func (c *ConfluenceConnector) Search(ctx context.Context, queryTerms string, k int) ([]domain.KnowledgeDocument, error) {
	q := url.Values{}
	q.Set("cql", fmt.Sprintf("text ~ %q", queryTerms))
	q.Set("limit", fmt.Sprintf("%d", k))
	q.Set("expand", "body.storage")

	resp, err := c.do(ctx, "/rest/api/content/search?"+q.Encode())
	if err != nil {
		return nil, domain.UpstreamFailure("confluence search failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, domain.UpstreamFailure(fmt.Sprintf("confluence returned status %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Results []confluencePage `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.UpstreamFailure("decoding confluence response", err)
	}
	out := make([]domain.KnowledgeDocument, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		out = append(out, p.toDomain())
	}
	return out, nil
}

func (c *ConfluenceConnector) Get(ctx context.Context, docID string) (domain.KnowledgeDocument, error) {
	resp, err := c.do(ctx, "/rest/api/content/"+docID+"?expand=body.storage")
	if err != nil {
		return domain.KnowledgeDocument{}, domain.UpstreamFailure("confluence get failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return domain.KnowledgeDocument{}, domain.NotFound(fmt.Sprintf("knowledge document %s not found", docID))
	}
	if resp.StatusCode >= 400 {
		return domain.KnowledgeDocument{}, domain.UpstreamFailure(fmt.Sprintf("confluence returned status %d", resp.StatusCode), nil)
	}
	var page confluencePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return domain.KnowledgeDocument{}, domain.UpstreamFailure("decoding confluence response", err)
	}
	return page.toDomain(), nil
}

type confluencePage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
}

func (p confluencePage) toDomain() domain.KnowledgeDocument {
	return domain.KnowledgeDocument{
		DocID:   p.ID,
		Title:   p.Title,
		Content: p.Body.Storage.Value,
	}
}
