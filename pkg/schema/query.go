package schema

import (
	"strings"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// QueryRequest represents a question put to the guidance service
type QueryRequest struct {
	Question       string `json:"question" arg:"" help:"Question text"`
	UserID         string `json:"user_id,omitempty" help:"User identity" optional:""`
	ConversationID string `json:"conversation_id,omitempty" help:"Continue an existing conversation" optional:""`
	Language       string `json:"preferred_language,omitempty" help:"Preferred response language" optional:""`
	Sources        bool   `json:"include_sources,omitempty" help:"Include source citations" optional:""`
	Thinking       bool   `json:"include_thinking,omitempty" help:"Include progress narration" optional:""`
}

// QueryResponse represents a complete answer, assembled from a stream or
// returned in one piece
type QueryResponse struct {
	QueryID        string   `json:"query_id,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
	Answer         string   `json:"answer"`
	Sources        []Source `json:"sources,omitempty"`
	Metadata       Metadata `json:"metadata,omitempty"`
}

// Metadata is the free-form metadata attached to a query response. The
// service replaces it in full on each metadata event, never field by field.
type Metadata map[string]any

// Source describes a scriptural passage cited by an answer
type Source struct {
	Title     string  `json:"title,omitempty"`     // Name of the text
	Reference string  `json:"reference,omitempty"` // Chapter and verse
	Excerpt   string  `json:"excerpt,omitempty"`   // Quoted passage
	Language  string  `json:"language,omitempty"`
	Score     float64 `json:"score,omitempty"` // Retrieval relevance
	URL       string  `json:"url,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetString returns a metadata value as a string, or empty when absent
func (m Metadata) GetString(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	}
	return ""
}

// Language returns the response language recorded in the metadata
func (m Metadata) Language() string {
	return m.GetString("language")
}

// Category returns the query category recorded in the metadata
func (m Metadata) Category() string {
	return m.GetString("category")
}

// Label returns a short display label for the source, combining the
// title and reference
func (s Source) Label() string {
	switch {
	case s.Title != "" && s.Reference != "":
		return s.Title + " " + s.Reference
	case s.Title != "":
		return s.Title
	default:
		return s.Reference
	}
}

// Valid returns true when the request carries a question
func (r QueryRequest) Valid() bool {
	return strings.TrimSpace(r.Question) != ""
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r QueryRequest) String() string {
	return types.Stringify(r)
}

func (r QueryResponse) String() string {
	return types.Stringify(r)
}

func (s Source) String() string {
	return types.Stringify(s)
}
