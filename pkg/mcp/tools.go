package mcp

import (
	"context"
	"encoding/json"
	"sync"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	divyavaani "github.com/mutablelogic/go-divyavaani"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	tool "github.com/mutablelogic/go-divyavaani/pkg/tool"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// backend is the state shared by the guidance tools. It remembers the most
// recent query so that follow-up tools (sources, feedback) can refer to it
// without the host having to track identifiers.
type backend struct {
	client *httpclient.Client

	mu                 sync.Mutex
	lastQueryID        string
	lastConversationID string
	lastSources        []schema.Source
}

// askQuestion is a tool that submits a question and returns the answer.
type askQuestion struct {
	*backend
}

// listSources is a tool that returns the citations for the last answer.
type listSources struct {
	*backend
}

// submitFeedback is a tool that rates the last answer.
type submitFeedback struct {
	*backend
}

// checkHealth is a tool that reports service health.
type checkHealth struct {
	*backend
}

var _ tool.Tool = (*askQuestion)(nil)
var _ tool.Tool = (*listSources)(nil)
var _ tool.Tool = (*submitFeedback)(nil)
var _ tool.Tool = (*checkHealth)(nil)

///////////////////////////////////////////////////////////////////////////////
// REQUEST / RESPONSE TYPES

// AskRequest defines the input for the ask tool.
type AskRequest struct {
	Question     string `json:"question" jsonschema:"The question to ask, in any supported language"`
	Language     string `json:"language,omitempty" jsonschema:"Preferred language for the answer, as a BCP 47 tag such as en or hi (default: the service decides)"`
	Conversation string `json:"conversation,omitempty" jsonschema:"Conversation identifier to continue an earlier exchange (default: continue the most recent one)"`
}

// AskResponse is the answer to a question.
type AskResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id,omitempty"`
	Sources        int    `json:"sources"` // Number of citations available from the sources tool
}

// SubmitFeedbackRequest defines the input for the feedback tool.
type SubmitFeedbackRequest struct {
	Rating  string `json:"rating" jsonschema:"One of helpful, unhelpful or harmful"`
	Comment string `json:"comment,omitempty" jsonschema:"Free-form comment on the answer"`
	QueryID string `json:"query_id,omitempty" jsonschema:"Query the feedback refers to (default: the most recent answer)"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewTools returns guidance tools backed by the given client.
func NewTools(client *httpclient.Client) ([]tool.Tool, error) {
	if client == nil {
		return nil, divyavaani.ErrBadParameter.With("client is required")
	}

	backend := &backend{client: client}
	return []tool.Tool{
		&askQuestion{backend},
		&listSources{backend},
		&submitFeedback{backend},
		&checkHealth{backend},
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE - ASK

func (*askQuestion) Name() string {
	return "ask"
}

func (*askQuestion) Description() string {
	return "Ask a spiritual or scriptural question and receive guidance grounded in source texts. " +
		"Follow-up questions in the same conversation keep their context. " +
		"Citations for the answer are available from the sources tool."
}

func (*askQuestion) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[AskRequest](nil)
}

func (t *askQuestion) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req AskRequest

	// Unmarshal input
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, divyavaani.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
		}
	}
	if req.Question == "" {
		return nil, divyavaani.ErrBadParameter.With("question is required")
	}

	// Gather query options
	var opts []opt.Opt
	if req.Language != "" {
		opts = append(opts, httpclient.WithLanguage(req.Language))
	}
	if conversation := t.conversation(req.Conversation); conversation != "" {
		opts = append(opts, httpclient.WithConversation(conversation))
	}

	// Submit the question
	response, err := t.client.Query(ctx, req.Question, opts...)
	if err != nil {
		return nil, err
	}

	// Remember the query for the sources and feedback tools
	t.remember(response)

	return &AskResponse{
		Answer:         response.Answer,
		ConversationID: response.ConversationID,
		Sources:        len(response.Sources),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE - SOURCES

func (*listSources) Name() string {
	return "sources"
}

func (*listSources) Description() string {
	return "Return the scriptural citations for the most recent answer from the ask tool, " +
		"with title, reference and excerpt for each passage."
}

func (*listSources) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[struct{}](nil)
}

func (t *listSources) Run(_ context.Context, _ json.RawMessage) (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastQueryID == "" {
		return nil, divyavaani.ErrNotFound.With("no answer to cite, ask a question first")
	}
	return t.lastSources, nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE - FEEDBACK

func (*submitFeedback) Name() string {
	return "submit_feedback"
}

func (*submitFeedback) Description() string {
	return "Rate an answer as helpful, unhelpful or harmful, with an optional comment. " +
		"Without a query identifier the rating applies to the most recent answer."
}

func (*submitFeedback) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[SubmitFeedbackRequest](nil)
}

func (t *submitFeedback) Run(ctx context.Context, input json.RawMessage) (any, error) {
	var req SubmitFeedbackRequest

	// Unmarshal input
	if len(input) > 0 {
		if err := json.Unmarshal(input, &req); err != nil {
			return nil, divyavaani.ErrBadParameter.Withf("failed to unmarshal input: %v", err)
		}
	}

	// Parse the rating
	var rating schema.Rating
	if err := rating.UnmarshalText([]byte(req.Rating)); err != nil {
		return nil, divyavaani.ErrBadParameter.Withf("%v", err)
	}

	// Resolve the query the feedback refers to
	t.mu.Lock()
	queryID := req.QueryID
	conversationID := ""
	if queryID == "" {
		queryID = t.lastQueryID
	}
	if queryID == t.lastQueryID {
		conversationID = t.lastConversationID
	}
	t.mu.Unlock()
	if queryID == "" {
		return nil, divyavaani.ErrBadParameter.With("no answer to rate, ask a question first")
	}

	// Submit the feedback
	response, err := t.client.SubmitFeedback(ctx, schema.FeedbackRequest{
		QueryID:        queryID,
		ConversationID: conversationID,
		Rating:         rating,
		Comment:        req.Comment,
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

///////////////////////////////////////////////////////////////////////////////
// TOOL INTERFACE - HEALTH

func (*checkHealth) Name() string {
	return "health"
}

func (*checkHealth) Description() string {
	return "Report the health of the guidance service and its dependencies."
}

func (*checkHealth) Schema() (*jsonschema.Schema, error) {
	return jsonschema.For[struct{}](nil)
}

func (t *checkHealth) Run(ctx context.Context, _ json.RawMessage) (any, error) {
	return t.client.Health(ctx)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// conversation returns the conversation to continue, preferring an explicit
// identifier over the remembered one.
func (b *backend) conversation(explicit string) string {
	if explicit != "" {
		return explicit
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastConversationID
}

// remember stores the query context for the sources and feedback tools.
func (b *backend) remember(response *schema.QueryResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastQueryID = response.QueryID
	b.lastConversationID = response.ConversationID
	b.lastSources = response.Sources
}
