package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"smartrecover.dev/engine/internal/domain"
)

// PromptStore holds each agent's {default, current} system prompt.
// Reads are served from an in-memory copy; writes persist to a single JSON
// document via write-temp-then-rename, so a crash mid-write never leaves a
// corrupt file — the same atomic-rename convention this codebase uses
// anywhere a mutable document is persisted to a single file.
type PromptStore struct {
	mu      sync.Mutex
	path    string
	records map[string]*domain.PromptRecord // keyed by agent name
}

func NewPromptStore(path string, defaults map[string]string) (*PromptStore, error) {
	s := &PromptStore{path: path, records: make(map[string]*domain.PromptRecord)}
	for agent, def := range defaults {
		s.records[agent] = &domain.PromptRecord{AgentName: agent, Default: def, Current: def}
	}

	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("config-error: reading prompt store %s: %w", path, err)
	}

	var persisted map[string]string // agent -> current
	if err := json.Unmarshal(raw, &persisted); err != nil {
		return nil, fmt.Errorf("config-error: parsing prompt store %s: %w", path, err)
	}
	for agent, current := range persisted {
		if rec, ok := s.records[agent]; ok {
			rec.Current = current
		}
	}
	return s, nil
}

func (s *PromptStore) List() []domain.PromptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PromptRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out
}

func (s *PromptStore) Get(agent string) (domain.PromptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[agent]
	if !ok {
		return domain.PromptRecord{}, domain.NotFound(fmt.Sprintf("unknown agent %q", agent))
	}
	return *r, nil
}

// Put sets agent's current prompt. Setting current == default clears the
// custom flag implicitly (PromptRecord.IsCustom derives it).
func (s *PromptStore) Put(agent, newPrompt string) (domain.PromptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[agent]
	if !ok {
		return domain.PromptRecord{}, domain.NotFound(fmt.Sprintf("unknown agent %q", agent))
	}
	r.Current = newPrompt

	if err := s.persistLocked(); err != nil {
		return domain.PromptRecord{}, err
	}
	return *r, nil
}

// Reset restores current = default for one agent, or all agents if
// agent == "". Idempotent: calling it twice in a row leaves is_custom
// false both times.
func (s *PromptStore) Reset(agent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agent == "" {
		for _, r := range s.records {
			r.Current = r.Default
		}
		return s.persistLocked()
	}

	r, ok := s.records[agent]
	if !ok {
		return domain.NotFound(fmt.Sprintf("unknown agent %q", agent))
	}
	r.Current = r.Default
	return s.persistLocked()
}

func (s *PromptStore) persistLocked() error {
	if s.path == "" {
		return nil
	}

	persisted := make(map[string]string, len(s.records))
	for agent, r := range s.records {
		persisted[agent] = r.Current
	}

	raw, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return fmt.Errorf("config-error: marshaling prompt store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config-error: creating prompt store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prompts-*.tmp")
	if err != nil {
		return fmt.Errorf("config-error: creating temp prompt file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("config-error: writing temp prompt file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config-error: closing temp prompt file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("config-error: renaming prompt file into place: %w", err)
	}
	return nil
}
