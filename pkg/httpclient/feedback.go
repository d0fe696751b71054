package httpclient

import (
	"context"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// SubmitFeedback records a rating for an answer. The user identity
// defaults to the client identity when the request does not carry one.
func (c *Client) SubmitFeedback(ctx context.Context, req schema.FeedbackRequest) (*schema.FeedbackResponse, error) {
	if req.QueryID == "" {
		return nil, divyavaani.ErrBadParameter.With("missing query id")
	}
	if req.UserID == "" {
		req.UserID = c.User()
	}

	// Create request
	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	// Perform request
	var response schema.FeedbackResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("feedback")); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}
