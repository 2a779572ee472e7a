package store

import (
	"sync"

	"smartrecover.dev/engine/internal/domain"
)

// Category names the dimension accuracy metrics are tracked against.
const (
	CategorySimilarIncidents   = "similar_incidents"
	CategoryKnowledgeDocuments = "knowledge_documents"
	CategoryChanges            = "changes"
	CategoryLogs               = "logs"
	CategoryEvents             = "events"
)

type itemKey struct {
	itemID string
	kind   string
	source string
}

// ExclusionStore holds per-incident excluded-item sets and the returned
// counters accuracy metrics derive from. The returned counters only grow;
// there is no separate excluded counter: the excluded figure is computed
// from the current exclusion sets, so removing an exclusion lowers it, and
// an item excluded for several incidents counts once per incident. A single
// mutex guards the whole store, matching the rest of the store package.
type ExclusionStore struct {
	mu        sync.Mutex
	excluded  map[string]map[itemKey]bool // incidentID -> excluded triples
	returned  map[string]map[itemKey]bool // category -> ever-returned triples (distinct)
	returnedN map[string]int              // category -> total returned count (monotonic, non-distinct)
}

func NewExclusionStore() *ExclusionStore {
	return &ExclusionStore{
		excluded:  make(map[string]map[itemKey]bool),
		returned:  make(map[string]map[itemKey]bool),
		returnedN: make(map[string]int),
	}
}

func (s *ExclusionStore) Exclude(incidentID string, item domain.ExcludedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.excluded[incidentID] == nil {
		s.excluded[incidentID] = make(map[itemKey]bool)
	}
	s.excluded[incidentID][itemKey{item.ItemID, item.Kind, item.Source}] = true
}

func (s *ExclusionStore) Remove(incidentID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.excluded[incidentID]
	for k := range set {
		if k.itemID == itemID {
			delete(set, k)
		}
	}
}

func (s *ExclusionStore) List(incidentID string) []domain.ExcludedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ExcludedItem
	for k := range s.excluded[incidentID] {
		out = append(out, domain.ExcludedItem{ItemID: k.itemID, Kind: k.kind, Source: k.source})
	}
	return out
}

// IsExcluded reports whether itemID is excluded for incidentID, regardless
// of kind/source (the orchestrator filters purely on item_id).
func (s *ExclusionStore) IsExcluded(incidentID, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.excluded[incidentID] {
		if k.itemID == itemID {
			return true
		}
	}
	return false
}

// RecordReturned increments the category's returned counter (every time an
// item is surfaced, even if the same item repeats) and tracks the item's
// distinct identity for excluded-fraction bookkeeping elsewhere.
func (s *ExclusionStore) RecordReturned(category, itemID, kind, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.returnedN[category]++
	if s.returned[category] == nil {
		s.returned[category] = make(map[itemKey]bool)
	}
	s.returned[category][itemKey{itemID, kind, source}] = true
}

// CategoryMetrics is the accuracy report for one category.
type CategoryMetrics struct {
	Returned int
	Excluded int
	Accuracy float64
}

// AccuracyMetrics computes per-category and overall accuracy:
// accuracy = 100 * (returned - excluded) / max(returned, 1); overall is
// weighted by returned. excluded is the number of current exclusions, across
// all incidents, whose (item_id, kind, source) triple was returned in that
// category.
func (s *ExclusionStore) AccuracyMetrics() (map[string]CategoryMetrics, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories := []string{
		CategorySimilarIncidents, CategoryKnowledgeDocuments, CategoryChanges,
		CategoryLogs, CategoryEvents,
	}

	out := make(map[string]CategoryMetrics, len(categories))
	var totalReturned, weightedAccuracySum float64

	for _, cat := range categories {
		returned := s.returnedN[cat]

		excludedDistinct := 0
		returnedSet := s.returned[cat]
		for _, excludedSet := range s.excluded {
			for k := range excludedSet {
				if returnedSet != nil && returnedSet[k] {
					excludedDistinct++
				}
			}
		}

		denom := returned
		if denom == 0 {
			denom = 1
		}
		accuracy := 100 * float64(returned-excludedDistinct) / float64(denom)
		if accuracy < 0 {
			accuracy = 0
		}
		if accuracy > 100 {
			accuracy = 100
		}

		out[cat] = CategoryMetrics{Returned: returned, Excluded: excludedDistinct, Accuracy: accuracy}
		totalReturned += float64(returned)
		weightedAccuracySum += float64(returned) * accuracy
	}

	overall := 0.0
	if totalReturned > 0 {
		overall = weightedAccuracySum / totalReturned
	}
	return out, overall
}
