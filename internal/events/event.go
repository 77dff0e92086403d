package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPipelineStarted  EventType = "pipeline_started"
	EventGeneratorResult  EventType = "generator_result"
	EventValidationResult EventType = "validation_result"
	EventReviewResult     EventType = "review_result"
	EventDiffCreated      EventType = "diff_created"
	EventDiffRejected     EventType = "diff_rejected"
	EventDiffCommitted    EventType = "diff_committed"
	EventPipelineFailed   EventType = "pipeline_failed"
)

// Pipeline roles as they appear on the wire.
const (
	RoleGenerator = "generator"
	RoleReviewer  = "reviewer"
	RoleHuman     = "human"
)

// PipelineEvent is one pipeline step broadcast to a project topic. The
// stream is an optimization, not the source of truth: everything here is
// re-derivable from the diff store and the transcript.
type PipelineEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	ProjectID string         `json:"project_id"`
	SessionID string         `json:"session_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New creates a PipelineEvent with id and timestamp filled in.
func New(eventType EventType, projectID, message string) PipelineEvent {
	return PipelineEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProjectID: projectID,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

type contextKey string

const sessionContextKey contextKey = "vibegrapher/events/session"

// WithSession returns a derived context annotated with the given session
// id so event emitters can automatically scope payloads.
func WithSession(ctx context.Context, sessionID string) context.Context {
	if strings.TrimSpace(sessionID) == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, sessionID)
}

// SessionFromContext extracts the session id associated with ctx.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}
