package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// PopularQuestionsRequest represents a request for the most-asked questions
type PopularQuestionsRequest struct {
	Since    time.Time `json:"since,omitzero" help:"Start of the reporting window" optional:""`
	Category string    `json:"category,omitempty" help:"Filter by category" optional:""`
	Language string    `json:"language,omitempty" help:"Filter by language" optional:""`
	Limit    *uint     `json:"limit,omitempty" help:"Maximum number of questions to return"`
	Offset   uint      `json:"offset,omitempty" help:"Offset for pagination"`
}

// PopularQuestion is one entry in the popular questions report
type PopularQuestion struct {
	Question string `json:"question"`
	Count    uint   `json:"count"`
	Category string `json:"category,omitempty"`
	Language string `json:"language,omitempty"`
}

// PopularQuestionsResponse represents a response containing the
// most-asked questions
type PopularQuestionsResponse struct {
	Count  uint              `json:"count"`
	Offset uint              `json:"offset,omitzero"`
	Limit  *uint             `json:"limit,omitzero"`
	Body   []PopularQuestion `json:"body,omitzero"`
}

// UsageSummary represents aggregate usage over a reporting window
type UsageSummary struct {
	Queries       uint            `json:"queries"`
	Users         uint            `json:"users,omitempty"`
	Conversations uint            `json:"conversations,omitempty"`
	Languages     map[string]uint `json:"languages,omitempty"`
	Since         time.Time       `json:"since,omitzero"`
	Until         time.Time       `json:"until,omitzero"`
}

// AnalyticsEvent represents one client-side interaction reported to
// the service
type AnalyticsEvent struct {
	Name       string         `json:"event"`
	UserID     string         `json:"user_id,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp,omitzero"`
	Properties map[string]any `json:"properties,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r PopularQuestionsRequest) String() string {
	return types.Stringify(r)
}

func (r PopularQuestionsResponse) String() string {
	return types.Stringify(r)
}

func (r UsageSummary) String() string {
	return types.Stringify(r)
}

func (e AnalyticsEvent) String() string {
	return types.Stringify(e)
}
