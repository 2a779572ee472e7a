package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Fields flow through context enrichment so business
// context (incident_id, trace_id, etc.) is automatically included in every
// log statement made while handling a request.
type LogFields struct {
	TraceID    string
	IncidentID string
	Component  string // e.g. "orchestrator", "http.handler"
}

// WithLogFields enriches context with structured log fields. Multiple calls
// merge fields, with newer non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context. Returns an empty LogFields
// if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing
	if new.TraceID != "" {
		result.TraceID = new.TraceID
	}
	if new.IncidentID != "" {
		result.IncidentID = new.IncidentID
	}
	if new.Component != "" {
		result.Component = new.Component
	}
	return result
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Used for the prompt log's context summary among others.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
