// Package promptlog mirrors PromptLogStore entries onto a Redis stream for
// out-of-process debugging. It is optional: the in-memory ring buffer in
// internal/store is the system of record; this package only adds a
// side-channel a separate consumer can tail. Grounded on the teacher's
// internal/queue/producer.go XADD pattern, generalized from its
// EventMessage shape to a prompt-invocation record.
package promptlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"smartrecover.dev/engine/internal/domain"
)

// Mirror pushes prompt log entries onto a Redis stream. Failures are logged
// and swallowed: a mirror outage must never affect resolution or chat.
type Mirror struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewMirror(client *redis.Client, stream string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	if stream == "" {
		stream = "smartrecover:prompt_log"
	}
	return &Mirror{client: client, stream: stream, logger: logger}
}

// Push writes entry to the stream. History is JSON-encoded into a single
// field since redis stream values are flat string maps.
func (m *Mirror) Push(ctx context.Context, entry domain.PromptLogEntry) {
	history, err := json.Marshal(entry.ConversationHistory)
	if err != nil {
		m.logger.WarnContext(ctx, "prompt log mirror: marshal history failed", "error", err)
		history = []byte("[]")
	}

	fields := map[string]any{
		"id":              entry.ID,
		"timestamp":       entry.Timestamp.UnixMilli(),
		"incident_id":     entry.IncidentID,
		"prompt_type":     string(entry.PromptType),
		"system_prompt":   entry.SystemPrompt,
		"user_message":    entry.UserMessage,
		"context_summary": entry.ContextSummary,
		"history":         string(history),
	}

	if err := m.client.XAdd(ctx, &redis.XAddArgs{
		Stream: m.stream,
		Values: fields,
	}).Err(); err != nil {
		m.logger.WarnContext(ctx, "prompt log mirror: xadd failed", "error", err, "incident_id", entry.IncidentID)
		return
	}

	m.logger.DebugContext(ctx, "mirrored prompt log entry to redis", "incident_id", entry.IncidentID, "prompt_type", entry.PromptType)
}

// Close releases the underlying Redis client.
func (m *Mirror) Close() error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("close prompt log mirror: %w", err)
	}
	return nil
}
