package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Conversation is a sequence of questions and answers for one user
type Conversation struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Language string    `json:"language,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Created  time.Time `json:"created,omitzero"`
	Modified time.Time `json:"modified,omitzero"`
}

// Message is a single turn within a conversation
type Message struct {
	Role    string    `json:"role"`
	Text    string    `json:"text"`
	Sources []Source  `json:"sources,omitempty"`
	Created time.Time `json:"created,omitzero"`
}

// GetConversationRequest represents a request to get a conversation by ID
type GetConversationRequest struct {
	ID string `json:"id" arg:"" help:"Conversation ID"`
}

// DeleteConversationRequest represents a request to delete a conversation
// by ID
type DeleteConversationRequest struct {
	ID string `json:"id" arg:"" help:"Conversation ID"`
}

// ListConversationRequest represents a request to list conversations
type ListConversationRequest struct {
	UserID string `json:"user_id,omitempty" help:"Filter by user" optional:""`
	Limit  *uint  `json:"limit,omitempty" help:"Maximum number of conversations to return"`
	Offset uint   `json:"offset,omitempty" help:"Offset for pagination"`
}

// ListConversationResponse represents a response containing a list of
// conversations
type ListConversationResponse struct {
	Count  uint            `json:"count"`
	Offset uint            `json:"offset,omitzero"`
	Limit  *uint           `json:"limit,omitzero"`
	Body   []*Conversation `json:"body,omitzero"`
}

///////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Append adds a message to the conversation, updating the modified time
func (c *Conversation) Append(message Message) {
	if message.Created.IsZero() {
		message.Created = time.Now()
	}
	c.Messages = append(c.Messages, message)
	c.Modified = message.Created
}

// Sources returns the sources cited across the conversation, in order
func (c *Conversation) Sources() []Source {
	var sources []Source
	for _, message := range c.Messages {
		sources = append(sources, message.Sources...)
	}
	return sources
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Conversation) String() string {
	return types.Stringify(c)
}

func (m Message) String() string {
	return types.Stringify(m)
}

func (r ListConversationRequest) String() string {
	return types.Stringify(r)
}

func (r ListConversationResponse) String() string {
	return types.Stringify(r)
}
