package httpclient

import (
	"context"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-divyavaani/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Session accumulates a conversation across queries. Each question and
// each completed answer is appended to the conversation in order. At most
// one stream is active per session: asking a new question supersedes any
// stream still in flight, and a superseded stream can no longer change
// the conversation, however late its events arrive.
type Session struct {
	mu           sync.Mutex
	client       *Client
	opts         []opt.Opt
	conversation schema.Conversation
	current      *Stream
	seq          uint64
	err          error
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSession creates a session with a fresh conversation identity.
// Options passed here apply to every query made through the session.
func (c *Client) NewSession(opts ...opt.Opt) (*Session, error) {
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}
	language, err := types.NormaliseLanguage(o.GetString(opt.LanguageKey))
	if err != nil {
		return nil, err
	}
	return &Session{
		client: c,
		opts:   opts,
		conversation: schema.Conversation{
			ID:       uuid.New().String(),
			UserID:   c.User(),
			Language: language,
			Created:  time.Now(),
		},
	}, nil
}

// ResumeSession creates a session over an existing conversation,
// fetching its history from the service.
func (c *Client) ResumeSession(ctx context.Context, conversation string, opts ...opt.Opt) (*Session, error) {
	history, err := c.GetConversation(ctx, conversation)
	if err != nil {
		return nil, err
	}
	session, err := c.NewSession(opts...)
	if err != nil {
		return nil, err
	}
	session.conversation = *history
	return session, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Ask sends a question within the conversation and returns the stream of
// events for the caller to drain. The question is appended to the
// conversation immediately and the answer is appended once its stream
// completes. Any stream still in flight from an earlier question is
// closed first.
func (s *Session) Ask(ctx context.Context, question string, opts ...opt.Opt) (*Stream, error) {
	s.mu.Lock()
	prior := s.current
	s.current = nil
	s.err = nil
	s.seq++
	token := s.seq
	s.conversation.Append(schema.Message{Role: schema.RoleUser, Text: question})
	merged := make([]opt.Opt, 0, len(s.opts)+len(opts)+1)
	merged = append(merged, opt.SetString(opt.ConversationKey, s.conversation.ID))
	merged = append(merged, s.opts...)
	merged = append(merged, opts...)
	s.mu.Unlock()

	// End any superseded stream before starting the next
	if prior != nil {
		prior.Close()
	}

	stream, err := s.client.QueryStream(ctx, question, merged...)
	if err != nil {
		s.mu.Lock()
		if token == s.seq {
			s.err = err
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		stream.Close()
		return stream, nil
	}
	stream.notify = s.observe(token)
	s.current = stream
	s.mu.Unlock()
	return stream, nil
}

// Conversation returns a snapshot of the conversation so far. Answers
// still streaming are not included until they complete.
func (s *Session) Conversation() *schema.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation := s.conversation
	conversation.Messages = append([]schema.Message(nil), s.conversation.Messages...)
	return &conversation
}

// ID returns the conversation identity for the session
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.ID
}

// Err returns the failure from the most recent question, or nil. It is
// reset when the next question is asked.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Streaming returns true while an answer is in flight
func (s *Session) Streaming() bool {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	return current != nil && current.Streaming()
}

// Close ends any stream still in flight. The conversation remains
// readable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	current := s.current
	s.current = nil
	s.seq++
	s.mu.Unlock()
	if current != nil {
		return current.Close()
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// observe returns the completion hook for one question. The token pins
// the hook to the question which created it, so a superseded stream
// cannot append to the conversation.
func (s *Session) observe(token uint64) func(schema.QueryResponse, error) {
	return func(response schema.QueryResponse, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if token != s.seq {
			return
		}
		s.current = nil
		if err != nil {
			s.err = err
			return
		}
		s.conversation.Append(schema.Message{
			Role:    schema.RoleAssistant,
			Text:    response.Answer,
			Sources: response.Sources,
		})
	}
}
