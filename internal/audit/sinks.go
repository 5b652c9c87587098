package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit",
		"action", event.Action,
		"artifact_id", event.ArtifactID,
		"form_type", event.FormType,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"reason", event.Reason,
		"at", event.Timestamp,
	)
	return nil
}

// MemorySink keeps events in order; tests read them back with Events.
type MemorySink struct {
	events chan Event
}

// NewMemorySink creates a sink holding up to capacity events.
func NewMemorySink(capacity int) *MemorySink {
	return &MemorySink{events: make(chan Event, capacity)}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.events <- event
	return nil
}

// Events exposes appended events in arrival order.
func (s *MemorySink) Events() <-chan Event {
	return s.events
}
