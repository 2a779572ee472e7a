package connector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"smartrecover.dev/engine/internal/csvutil"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
)

// MockKnowledgeBaseConnector is the CSV + markdown/front-matter-directory
// variant of KnowledgeBaseConnector.
type MockKnowledgeBaseConnector struct {
	docs []domain.KnowledgeDocument
}

func NewMockKnowledgeBaseConnector(ctx context.Context, csvPath, docsFolder string) (*MockKnowledgeBaseConnector, error) {
	c := &MockKnowledgeBaseConnector{}

	if csvPath != "" {
		rows, err := csvutil.ReadRecords(ctx, csvPath)
		if err != nil {
			return nil, fmt.Errorf("loading confluence docs: %w", err)
		}
		for _, row := range rows {
			c.docs = append(c.docs, domain.KnowledgeDocument{
				DocID:       row["doc_id"],
				Title:       row["title"],
				Content:     row["content"],
				IncidentIDs: []string{strings.TrimSpace(row["incident_id"])},
			})
		}
	}

	if docsFolder != "" {
		docs, err := loadRunbooks(docsFolder)
		if err != nil {
			return nil, fmt.Errorf("loading runbooks: %w", err)
		}
		c.docs = append(c.docs, docs...)
	}

	return c, nil
}

func (c *MockKnowledgeBaseConnector) Name() string { return "mock" }

// Search ranks documents by keyword overlap against queryTerms and returns
// the top-k.
func (c *MockKnowledgeBaseConnector) Search(ctx context.Context, queryTerms string, k int) ([]domain.KnowledgeDocument, error) {
	type scored struct {
		doc   domain.KnowledgeDocument
		score float64
	}
	var hits []scored
	for _, d := range c.docs {
		score := similarity.KeywordOverlap(queryTerms, d.Title+" "+d.Content)
		if score > 0 {
			hits = append(hits, scored{d, score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score == hits[j].score {
			return hits[i].doc.DocID < hits[j].doc.DocID
		}
		return hits[i].score > hits[j].score
	})

	var out []domain.KnowledgeDocument
	for _, h := range hits {
		if len(out) >= k {
			break
		}
		out = append(out, h.doc)
	}
	return out, nil
}

func (c *MockKnowledgeBaseConnector) Get(ctx context.Context, docID string) (domain.KnowledgeDocument, error) {
	for _, d := range c.docs {
		if d.DocID == docID {
			return d, nil
		}
	}
	return domain.KnowledgeDocument{}, domain.NotFound(fmt.Sprintf("knowledge document %s not found", docID))
}

// loadRunbooks reads every markdown/text file under dir, extracting an
// optional "---"-delimited front-matter block that carries at minimum
// `title:`.
func loadRunbooks(dir string) ([]domain.KnowledgeDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var docs []domain.KnowledgeDocument
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".txt") {
			continue
		}
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		title, content := parseFrontMatter(string(raw))
		if title == "" {
			title = strings.TrimSuffix(name, filepath.Ext(name))
		}
		docs = append(docs, domain.KnowledgeDocument{
			DocID:   name,
			Title:   title,
			Content: content,
		})
	}
	return docs, nil
}

func parseFrontMatter(raw string) (title, content string) {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	lines := []string{}
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", raw
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", raw
	}
	for _, line := range lines[1:end] {
		if t, ok := strings.CutPrefix(line, "title:"); ok {
			title = strings.TrimSpace(t)
		}
	}
	content = strings.Join(lines[end+1:], "\n")
	return title, content
}
