package httpclient

import (
	"context"
	"errors"
	"io"

	// Packages
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Query sends a question and blocks until the answer is complete,
// returning the accumulated response. Use WithStream to observe events
// as they arrive, WithConversation to continue an existing conversation
// and WithLanguage to set the preferred response language. When the
// stream fails partway, the partial response is returned alongside the
// error.
func (c *Client) Query(ctx context.Context, question string, opts ...opt.Opt) (*schema.QueryResponse, error) {
	stream, err := c.QueryStream(ctx, question, opts...)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	for {
		if _, err := stream.Next(); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return stream.Response(), err
		}
	}
	if err := stream.Err(); err != nil {
		return stream.Response(), err
	}
	return stream.Response(), nil
}
