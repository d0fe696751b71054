/*
divyavaani is a client library for the DivyaVaani question-answering service,
which streams answers to spiritual questions over server-sent events, grounded
in source texts. The library provides the streaming query client, a retrying
REST client for the surrounding API, session state, local stores and the chat
surfaces built on top of them.
*/
package divyavaani

import (
	"context"
	"io"

	// Packages
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Querier is the interface that wraps question-answering against the
// service
type Querier interface {
	// Query sends a question and blocks until the answer is complete,
	// returning the accumulated response
	Query(ctx context.Context, question string, opts ...opt.Opt) (*schema.QueryResponse, error)
}

// Stream is a pull-based sequence of events for one streaming query.
// Next returns events in arrival order and io.EOF once the stream has
// ended, whether by a terminal event, a failure or cancellation.
type Stream interface {
	io.Closer

	// Next returns the next event, or io.EOF at the end of the stream
	Next() (*schema.StreamEvent, error)

	// Response returns a snapshot of the response accumulated so far
	Response() *schema.QueryResponse

	// Streaming returns true while the stream is live
	Streaming() bool

	// Err returns the error which ended the stream, or nil
	Err() error
}

// Transcriber converts spoken audio into question text
type Transcriber interface {
	Transcribe(ctx context.Context, req schema.TranscribeRequest) (*schema.TranscribeResponse, error)
}

// Speaker synthesises speech for answer text, writing the audio to w
type Speaker interface {
	Speak(ctx context.Context, w io.Writer, text string, opts ...opt.Opt) error
}
