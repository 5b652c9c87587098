// Package audit records what happened to generated documents. Events carry
// identifiers only, never the personal data typed into the forms.
package audit

import "time"

// Action names an audited step in a document's life.
type Action string

const (
	ActionDocumentGenerated  Action = "document_generated"
	ActionGenerationFailed   Action = "document_generation_failed"
	ActionGuideDegraded      Action = "guide_degraded"
	ActionDocumentDownloaded Action = "document_downloaded"
	ActionDocumentSwept      Action = "document_swept"
)

// Event is emitted from services and fanned out to a Sink.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	FormType   string    `json:"form_type,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
