package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"praticai/pkg/requestcontext"
)

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// DefaultBuffer is the inbox capacity of a Publisher.
const DefaultBuffer = 1024

// Publisher accepts events without blocking the request path and hands them
// to a Sink from a background worker. When the inbox is full new events are
// dropped and counted.
type Publisher struct {
	sink    Sink
	inbox   chan Event
	logger  *slog.Logger
	dropped atomic.Int64
}

// NewPublisher creates a Publisher with the given inbox capacity.
func NewPublisher(sink Sink, buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Publisher{
		sink:   sink,
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit stamps the event with the request metadata from ctx and queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action,
			"artifact_id", event.ArtifactID,
		)
	}
}

// Dropped reports how many events were discarded because the inbox was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run forwards queued events to the sink until ctx is cancelled, then
// flushes what is still queued. Sink failures are logged and skipped.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case event := <-p.inbox:
			p.append(ctx, event)
		}
	}
}

func (p *Publisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-p.inbox:
			p.append(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) append(ctx context.Context, event Event) {
	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit sink append failed",
			"action", event.Action,
			"artifact_id", event.ArtifactID,
			"error", err,
		)
	}
}
