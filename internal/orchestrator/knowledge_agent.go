package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"smartrecover.dev/engine/internal/connector"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/similarity"
)

const knowledgeArticleMaxLen = 2000

// KnowledgeBaseAgent ranks knowledge documents by keyword overlap against
// the incident's text and truncates content to a bounded length.
type KnowledgeBaseAgent struct {
	conn connector.KnowledgeBaseConnector
	k    int
}

func NewKnowledgeBaseAgent(conn connector.KnowledgeBaseConnector, k int) *KnowledgeBaseAgent {
	if k <= 0 {
		k = 5
	}
	return &KnowledgeBaseAgent{conn: conn, k: k}
}

func (a *KnowledgeBaseAgent) Name() string { return AgentKnowledgeBase }
func (a *KnowledgeBaseAgent) DefaultPrompt() string {
	return "You surface knowledge-base articles and runbooks relevant to the incident."
}

func (a *KnowledgeBaseAgent) Query(ctx context.Context, incident domain.Incident) (*domain.KnowledgeBaseResult, error) {
	queryTerms := fmt.Sprintf("%s %s %s", incident.Title, incident.Description, strings.Join(incident.AffectedServices, " "))

	docs, err := a.conn.Search(ctx, queryTerms, a.k)
	if err != nil {
		return nil, err
	}

	articles := make([]domain.KnowledgeArticle, 0, len(docs))
	for _, d := range docs {
		articles = append(articles, domain.KnowledgeArticle{
			Title:          d.Title,
			Content:        truncateAtWordBoundary(d.Content, knowledgeArticleMaxLen),
			Tags:           d.Tags,
			RelevanceScore: similarity.KeywordOverlap(queryTerms, d.Title+" "+d.Content),
			DocID:          d.DocID,
		})
	}

	return &domain.KnowledgeBaseResult{
		Source:                a.conn.Name(),
		IncidentID:            incident.ID,
		Documents:             articles,
		KnowledgeBaseArticles: articles,
	}, nil
}

// truncateAtWordBoundary cuts s to at most maxLen runes, backing up to the
// last whitespace boundary rather than splitting mid-word.
func truncateAtWordBoundary(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}
