package schema

import (
	"time"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// UploadRequest represents a document upload for retrieval indexing.
// Sent as multipart/form-data with the file part and form fields.
type UploadRequest struct {
	File        client.File `json:"file" help:"Document to upload"`
	Title       string      `json:"title,omitempty" help:"Document title" optional:""`
	Language    string      `json:"language,omitempty" help:"Document language" optional:""`
	UserID      string      `json:"user_id,omitempty" help:"User identity" optional:""`
	Description string      `json:"description,omitempty" help:"Document description" optional:""`
}

// UploadResponse represents the acknowledgement of an uploaded document
type UploadResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Status   string    `json:"status,omitempty"` // pending, indexed, failed
	Created  time.Time `json:"created,omitzero"`
	Language string    `json:"language,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r UploadResponse) String() string {
	return types.Stringify(r)
}
