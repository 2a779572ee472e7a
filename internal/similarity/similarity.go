// Package similarity implements incident-to-incident text similarity
// (weighted Jaccard) and the quality-assessment scoring used for
// similar-incident results. Pure functions with no teacher equivalent —
// weighted Jaccard and quality scoring are specific to this domain.
package similarity

import (
	"regexp"
	"strings"

	"smartrecover.dev/engine/internal/domain"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// stopwords is a fixed English stopword set dropped during tokenization.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "as": true,
	"from": true, "into": true, "has": true, "have": true, "had": true,
	"not": true, "no": true, "can": true, "will": true, "would": true,
	"should": true, "could": true, "we": true, "our": true, "you": true,
	"your": true, "all": true, "any": true, "their": true,
}

// Tokenize lowercases, splits on non-alphanumeric, drops stopwords, and
// drops tokens shorter than 3 characters.
func Tokenize(text string) map[string]bool {
	lower := strings.ToLower(text)
	parts := nonAlphanumeric.Split(lower, -1)
	tokens := make(map[string]bool)
	for _, p := range parts {
		if len(p) < 3 {
			continue
		}
		if stopwords[p] {
			continue
		}
		tokens[p] = true
	}
	return tokens
}

// TokenizeServices turns a service-name slice into a token set (no
// stopword/length filtering — service names are identifiers, not prose).
func TokenizeServices(services []string) map[string]bool {
	set := make(map[string]bool, len(services))
	for _, s := range services {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return set
}

// Jaccard computes |A ∩ B| / |A ∪ B|, defined as 0 when both sets are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// IncidentSimilarity computes a weighted-Jaccard blend: title tokens 0.4,
// description tokens 0.4, affected-services set 0.2.
func IncidentSimilarity(a, b domain.Incident) float64 {
	titleScore := Jaccard(Tokenize(a.Title), Tokenize(b.Title))
	descScore := Jaccard(Tokenize(a.Description), Tokenize(b.Description))
	svcScore := Jaccard(TokenizeServices(a.AffectedServices), TokenizeServices(b.AffectedServices))
	return 0.4*titleScore + 0.4*descScore + 0.2*svcScore
}

// KeywordOverlap scores the Jaccard overlap between the query text's tokens
// and the candidate text's tokens — used by the knowledge-base agent's ranking and
// the change-correlation agent's description-keyword-overlap term.
func KeywordOverlap(queryText, candidateText string) float64 {
	return Jaccard(Tokenize(queryText), Tokenize(candidateText))
}

const qualityMinLength = 20

// AssessQuality scores a single similar-incident ticket: +0.5 if
// description present and >= 20 chars, +0.5 if resolution present and >= 20
// chars (for similar_incident kind).
func AssessQuality(t domain.Ticket) domain.QualityAssessment {
	var score float64
	var issues []string

	if len(strings.TrimSpace(t.Description)) >= qualityMinLength {
		score += 0.5
	} else {
		issues = append(issues, "missing or too-short description")
	}

	if t.Kind == domain.TicketKindSimilarIncident {
		if len(strings.TrimSpace(t.Resolution)) >= qualityMinLength {
			score += 0.5
		} else {
			issues = append(issues, "missing resolution")
		}
	}

	level := "poor"
	switch {
	case score >= 0.8:
		level = "good"
	case score >= 0.5:
		level = "warning"
	}

	return domain.QualityAssessment{Score: score, Level: level, Issues: issues}
}

// SummarizeQuality aggregates per-ticket assessments into the overall
// average and level counts reported alongside the agent result.
func SummarizeQuality(assessments map[string]domain.QualityAssessment) domain.QualitySummary {
	var sum domain.QualitySummary
	if len(assessments) == 0 {
		return sum
	}
	var total float64
	for _, a := range assessments {
		total += a.Score
		switch a.Level {
		case "good":
			sum.GoodCount++
		case "warning":
			sum.WarningCount++
		default:
			sum.PoorCount++
		}
	}
	sum.AverageScore = total / float64(len(assessments))
	return sum
}
