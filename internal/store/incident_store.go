// Package store holds the in-memory stores this domain needs: incidents
// (CSV-loaded, per-incident-locked), prompts (JSON-persisted), exclusions
// and accuracy metrics. Durable storage is an explicit non-goal, so none of
// these back onto a database.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"smartrecover.dev/engine/internal/csvutil"
	"smartrecover.dev/engine/internal/domain"
)

// IncidentStore holds all incidents loaded at startup. Reads are
// read-mostly; writes (status updates) are serialized per-incident so
// concurrent PUT /status calls never produce a half-updated incident.
// Grounded on the orchestrator's claim-then-release idiom, applied
// here to a map entry instead of a database row.
type IncidentStore struct {
	mu        sync.RWMutex
	incidents map[string]*domain.Incident
	locks     map[string]*sync.Mutex
}

func NewIncidentStore() *IncidentStore {
	return &IncidentStore{
		incidents: make(map[string]*domain.Incident),
		locks:     make(map[string]*sync.Mutex),
	}
}

// LoadCSV loads incidents.csv with the following schema:
// id,title,description,severity,status,created_at,affected_services,assignee
func (s *IncidentStore) LoadCSV(ctx context.Context, path string) error {
	rows, err := csvutil.ReadRecords(ctx, path)
	if err != nil {
		return fmt.Errorf("loading incidents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339, strings.TrimSpace(row["created_at"]))
		if err != nil {
			createdAt, err = time.Parse("2006-01-02T15:04:05", strings.TrimSpace(row["created_at"]))
			if err != nil {
				createdAt = time.Time{}
			}
		}

		inc := &domain.Incident{
			ID:               strings.TrimSpace(row["id"]),
			Title:            row["title"],
			Description:      row["description"],
			Severity:         domain.Severity(strings.TrimSpace(row["severity"])),
			Status:           domain.Status(strings.TrimSpace(row["status"])),
			CreatedAt:        createdAt,
			AffectedServices: csvutil.SplitPipe(row["affected_services"]),
			Assignee:         row["assignee"],
		}
		if inc.ID == "" {
			continue
		}
		s.incidents[inc.ID] = inc
		s.locks[inc.ID] = &sync.Mutex{}
	}
	return nil
}

// List returns all incidents ordered by created_at descending, ties broken
// by id ascending.
func (s *IncidentStore) List() []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, *inc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns one incident by ID, or a not-found error.
func (s *IncidentStore) Get(id string) (domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.incidents[id]
	if !ok {
		return domain.Incident{}, domain.NotFound(fmt.Sprintf("incident %s not found", id))
	}
	return *inc, nil
}

// UpdateStatus atomically transitions an incident's status. Concurrent
// callers for the same incident are serialized by a per-incident lock;
// readers (via Get/List) always observe either the old or the new value,
// never a partial update, because the swap under the lock replaces the
// pointer's pointee in one critical section.
func (s *IncidentStore) UpdateStatus(id string, status domain.Status) (domain.Incident, error) {
	if !status.Valid() {
		return domain.Incident{}, domain.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}

	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Incident{}, domain.NotFound(fmt.Sprintf("incident %s not found", id))
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incidents[id]
	if !ok {
		return domain.Incident{}, domain.NotFound(fmt.Sprintf("incident %s not found", id))
	}

	now := time.Now()
	updated := *inc
	updated.Status = status
	updated.UpdatedAt = &now
	s.incidents[id] = &updated

	return updated, nil
}

// ResolvedCandidates returns every incident except the one identified by
// excludeID, restricted to status=resolved — the candidate pool for
// find_similar.
func (s *IncidentStore) ResolvedCandidates(excludeID string) []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Incident
	for id, inc := range s.incidents {
		if id == excludeID {
			continue
		}
		if inc.Status != domain.StatusResolved {
			continue
		}
		out = append(out, *inc)
	}
	return out
}
