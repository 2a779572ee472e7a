package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smartrecover.dev/engine/common/id"
	"smartrecover.dev/engine/internal/domain"
	"smartrecover.dev/engine/internal/promptlog"
	"smartrecover.dev/engine/internal/store"
)

// Manager holds the active Client behind a mutex, so an admin config update
// can hot-swap the provider without restarting the process. Grounded on
// original_source/backend/llm/llm_manager.py's singleton-with-reload
// pattern, translated from a module-level singleton to an explicit struct
// since Go has no import-time side effects to hang a singleton off of.
type Manager struct {
	mu     sync.RWMutex
	client Client
	cfg    Config

	promptLog *store.PromptLogStore
	mirror    *promptlog.Mirror
}

func NewManager(cfg Config, promptLog *store.PromptLogStore) (*Manager, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{client: client, cfg: cfg, promptLog: promptLog}, nil
}

// SetMirror attaches an optional Redis-stream mirror. Nil disables mirroring.
func (m *Manager) SetMirror(mirror *promptlog.Mirror) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = mirror
}

// Reload swaps the active client for one built from newCfg. Concurrent
// in-flight calls keep using the client they already captured; only calls
// starting after Reload returns see the new provider.
func (m *Manager) Reload(newCfg Config) error {
	client, err := New(newCfg)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
	m.cfg = newCfg
	return nil
}

func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) snapshot() (Client, Config) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client, m.cfg
}

// Complete logs the prompt, then delegates to the active client under the
// configured blocking timeout.
func (m *Manager) Complete(ctx context.Context, incidentID string, promptType domain.PromptType, system, contextSummary string, messages []Message, history []domain.ChatMessage) (string, error) {
	m.logPrompt(ctx, incidentID, promptType, system, contextSummary, messages, history)
	client, cfg := m.snapshot()

	if cfg.BlockingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.BlockingTimeout)
		defer cancel()
	}
	return client.Complete(ctx, system, messages)
}

// Stream logs the prompt, then delegates to the active client. The returned
// channels are wrapped with an idle-between-chunks watchdog: if no chunk
// arrives within the configured idle timeout, the stream ends with an error
// rather than hanging indefinitely.
func (m *Manager) Stream(ctx context.Context, incidentID string, promptType domain.PromptType, system, contextSummary string, messages []Message, history []domain.ChatMessage) (<-chan string, <-chan error) {
	m.logPrompt(ctx, incidentID, promptType, system, contextSummary, messages, history)
	client, cfg := m.snapshot()

	tokens, errs := client.Stream(ctx, system, messages)
	if cfg.StreamIdleTimeout <= 0 {
		return tokens, errs
	}
	return watchStreamIdle(ctx, tokens, errs, cfg.StreamIdleTimeout)
}

// watchStreamIdle relays tokens/errs onto freshly owned channels, resetting
// an idle timer on every chunk. If the timer fires before the next chunk or
// the upstream close, it emits a timeout error and closes both channels.
func watchStreamIdle(ctx context.Context, tokens <-chan string, errs <-chan error, idle time.Duration) (<-chan string, <-chan error) {
	outTokens := make(chan string)
	outErrs := make(chan error, 1)

	go func() {
		defer close(outTokens)
		defer close(outErrs)

		timer := time.NewTimer(idle)
		defer timer.Stop()

		for {
			select {
			case tok, ok := <-tokens:
				if !ok {
					return
				}
				timer.Reset(idle)
				select {
				case outTokens <- tok:
				case <-ctx.Done():
					return
				}
			case err, ok := <-errs:
				if ok {
					outErrs <- err
				}
				return
			case <-timer.C:
				outErrs <- fmt.Errorf("llm stream idle for %s with no chunk received", idle)
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return outTokens, outErrs
}

// logPrompt is best-effort: an in-memory append never blocks on disk I/O, and
// the optional Redis mirror push happens synchronously but swallows its own
// errors, so logging a prompt can never fail or stall the caller.
func (m *Manager) logPrompt(ctx context.Context, incidentID string, promptType domain.PromptType, system, contextSummary string, messages []Message, history []domain.ChatMessage) {
	if m.promptLog == nil {
		return
	}
	var userMessage string
	if len(messages) > 0 {
		userMessage = messages[len(messages)-1].Content
	}
	entry := domain.PromptLogEntry{
		ID:                  id.New(),
		Timestamp:           time.Now(),
		IncidentID:          incidentID,
		PromptType:          promptType,
		SystemPrompt:        system,
		UserMessage:         userMessage,
		ContextSummary:      contextSummary,
		ConversationHistory: history,
	}
	m.promptLog.Append(entry)

	m.mu.RLock()
	mirror := m.mirror
	m.mu.RUnlock()
	if mirror != nil {
		mirror.Push(ctx, entry)
	}
}
