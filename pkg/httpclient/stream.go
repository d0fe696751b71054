package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-divyavaani/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Stream reads decoded events from a streaming query, one at a time.
// Events are folded into an accumulated response as they are read, so the
// response so far can be inspected at any point, including after a
// mid-stream failure. When the stream ends, Next returns io.EOF and Err
// reports how it ended. Closing the stream, or cancelling its context,
// ends it without an error.
type Stream struct {
	mu       sync.Mutex
	ctx      context.Context
	scanner  *client.TextScanner
	body     io.ReadCloser
	cancel   context.CancelFunc
	fn       func(schema.StreamEvent)
	notify   func(schema.QueryResponse, error)
	response schema.QueryResponse
	err      error
	done     bool
}

var _ divyavaani.Stream = (*Stream)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Message reported when an error event carries none
const defaultErrorMessage = "something went wrong"

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// QueryStream opens a streaming query and returns a stream of decoded
// events. The caller must drain the stream with Next or release it with
// Close. The user identity defaults to the client identity and can be
// overridden with WithUser.
func (c *Client) QueryStream(ctx context.Context, question string, opts ...opt.Opt) (*Stream, error) {
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Assemble the query
	req := schema.QueryRequest{
		Question:       question,
		UserID:         c.User(),
		ConversationID: o.GetString(opt.ConversationKey),
		Sources:        o.GetBool(opt.SourcesKey),
		Thinking:       o.GetBool(opt.ThinkingKey),
	}
	if user := o.GetString(opt.UserKey); user != "" {
		req.UserID = user
	}
	if language, err := types.NormaliseLanguage(o.GetString(opt.LanguageKey)); err != nil {
		return nil, divyavaani.ErrBadParameter.With(err)
	} else {
		req.Language = language
	}
	if !req.Valid() {
		return nil, divyavaani.ErrBadParameter.With("missing question")
	}

	// Guests are rate limited on the client side
	if err := c.throttle(); err != nil {
		return nil, err
	}

	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	// The stream owns the request cancellation
	ctx, cancel := context.WithCancel(ctx)
	resp, err := c.DoStream(ctx, payload,
		client.OptPath("text", "stream"),
		client.OptReqHeader("Accept", client.ContentTypeTextStream),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	fn, _ := o.Get(opt.StreamKey).(func(schema.StreamEvent))
	return &Stream{
		ctx:      ctx,
		scanner:  client.NewTextScanner(resp.Body),
		body:     resp.Body,
		cancel:   cancel,
		fn:       fn,
		response: schema.QueryResponse{ConversationID: req.ConversationID},
	}, nil
}

// Next returns the next event from the stream. It returns io.EOF once the
// stream has ended, including after a terminal event has been returned.
// Unrecognised event types are skipped. A malformed frame, or a transport
// failure mid-stream, ends the stream with an error; events read before
// the failure remain folded into the response.
func (s *Stream) Next() (*schema.StreamEvent, error) {
	event, finished, err := s.next()
	if event != nil && s.fn != nil {
		s.fn(*event)
	}
	if finished && s.notify != nil {
		s.notify(*s.Response(), s.Err())
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Close ends the stream and releases its connection. Closing is not an
// error: a stream ended by Close reports a nil Err, and the response
// accumulated so far remains readable.
func (s *Stream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}

// Err returns the error which ended the stream, or nil when the stream
// is still open, completed normally, or was cancelled.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Streaming returns true until a terminal event, a failure, or Close
// ends the stream.
func (s *Stream) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.done
}

// Response returns a snapshot of the response accumulated so far. Token
// fragments are concatenated in arrival order, source citations
// accumulate, and each metadata event replaces the previous metadata.
func (s *Stream) Response() *schema.QueryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	response := s.response
	response.Sources = append([]schema.Source(nil), s.response.Sources...)
	return &response
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// next reads and folds one event under the lock. The second return value
// is true exactly once, when the stream has just ended for a reason the
// owner should observe.
func (s *Stream) next() (*schema.StreamEvent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.done {
			return nil, false, io.EOF
		}

		frame, err := s.scanner.Next()
		if err != nil {
			return nil, s.finish(err), s.errOrEOF()
		}

		event, err := schema.ParseStreamEvent(frame.Event, []byte(frame.Data))
		if err != nil {
			s.err = fmt.Errorf("decoding %q event: %w", frame.Event, err)
			return nil, s.finish(nil), s.err
		}
		if event == nil {
			continue
		}

		s.apply(event)
		if event.Terminal() {
			return event, s.finish(nil), nil
		}
		return event, false, nil
	}
}

// finish marks the stream as ended and releases the connection. A read
// error caused by cancellation ends the stream silently and is not
// observable through Err.
func (s *Stream) finish(err error) bool {
	s.done = true
	cancelled := s.ctx.Err() != nil
	s.cancel()
	s.body.Close()
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	if cancelled || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	s.err = client.WrapError(err)
	return true
}

// errOrEOF returns the stream error when one is set, or io.EOF
func (s *Stream) errOrEOF() error {
	if s.err != nil {
		return s.err
	}
	return io.EOF
}

// apply folds an event into the accumulated response
func (s *Stream) apply(event *schema.StreamEvent) {
	switch event.Type {
	case schema.EventStart:
		s.response.QueryID = event.QueryID
	case schema.EventToken:
		s.response.Answer += event.Token
	case schema.EventMetadata:
		s.response.Metadata = event.Metadata
	case schema.EventSource:
		if event.Source != nil {
			s.response.Sources = append(s.response.Sources, *event.Source)
		}
	case schema.EventError:
		if event.Message == "" {
			event.Message = defaultErrorMessage
		}
		s.err = errors.New(event.Message)
	}
}
