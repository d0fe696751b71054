package schema

import (
	"encoding/json"
	"fmt"
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Rating is a user's judgement of an answer
type Rating uint

// FeedbackRequest represents feedback on an answer
type FeedbackRequest struct {
	QueryID        string `json:"query_id,omitempty" help:"Query the feedback refers to" optional:""`
	ConversationID string `json:"conversation_id,omitempty" help:"Conversation the feedback refers to" optional:""`
	UserID         string `json:"user_id,omitempty" help:"User identity" optional:""`
	Rating         Rating `json:"rating" arg:"" help:"Rating (helpful, unhelpful, harmful)"`
	Category       string `json:"category,omitempty" help:"Feedback category" optional:""`
	Comment        string `json:"comment,omitempty" help:"Free-form comment" optional:""`
}

// FeedbackResponse represents the acknowledgement of submitted feedback
type FeedbackResponse struct {
	ID      string    `json:"id,omitempty"`
	Status  string    `json:"status,omitempty"`
	Created time.Time `json:"created,omitzero"`
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	RatingHelpful   Rating = iota // The answer was helpful
	RatingUnhelpful               // The answer was not helpful
	RatingHarmful                 // The answer was harmful or inappropriate
)

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Rating) String() string {
	switch r {
	case RatingHelpful:
		return "helpful"
	case RatingUnhelpful:
		return "unhelpful"
	case RatingHarmful:
		return "harmful"
	default:
		return "unknown"
	}
}

func (r FeedbackRequest) String() string {
	return types.Stringify(r)
}

func (r FeedbackResponse) String() string {
	return types.Stringify(r)
}

///////////////////////////////////////////////////////////////////////////////
// JSON MARSHAL

func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "helpful":
		*r = RatingHelpful
	case "unhelpful":
		*r = RatingUnhelpful
	case "harmful":
		*r = RatingHarmful
	default:
		return fmt.Errorf("unknown rating: %q", s)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// KONG

// UnmarshalText lets a rating be given as a command line flag value
func (r *Rating) UnmarshalText(data []byte) error {
	return r.UnmarshalJSON([]byte(fmt.Sprintf("%q", string(data))))
}
