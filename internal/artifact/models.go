// Package artifact models generated PDF documents awaiting download.
package artifact

import (
	"time"

	"github.com/google/uuid"

	"praticai/internal/forms/models"
)

// Artifact is a generated PDF on disk, addressable by ID.
type Artifact struct {
	ID        uuid.UUID       `json:"id"`
	FormType  models.FormType `json:"form_type"`
	Path      string          `json:"path"`
	FileName  string          `json:"file_name"`
	CreatedAt time.Time       `json:"created_at"`
}

// DownloadURL is the public path serving the artifact.
func (a Artifact) DownloadURL() string {
	return DownloadPath(a.ID)
}

// DownloadPath is the public path serving the artifact with the given ID.
func DownloadPath(id uuid.UUID) string {
	return "/api/download/" + id.String()
}
