package httpclient

import (
	"context"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ListConversations returns stored conversations for the client user.
// Use WithUser to list for a different user, and WithLimit and
// WithOffset to paginate results.
func (c *Client) ListConversations(ctx context.Context, opts ...opt.Opt) (*schema.ListConversationResponse, error) {
	// Apply options
	o, err := opt.Apply(append([]opt.Opt{opt.SetString(opt.UserKey, c.User())}, opts...)...)
	if err != nil {
		return nil, err
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversations")}
	if q := o.Query(opt.UserKey, opt.LimitKey, opt.OffsetKey); len(q) > 0 {
		reqOpts = append(reqOpts, client.OptQuery(q))
	}

	// Perform request
	var response schema.ListConversationResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// GetConversation retrieves a conversation by ID, including its messages.
func (c *Client) GetConversation(ctx context.Context, id string) (*schema.Conversation, error) {
	if id == "" {
		return nil, divyavaani.ErrBadParameter.With("missing conversation id")
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("conversations", id)}

	// Perform request
	var response schema.Conversation
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// DeleteConversation removes a conversation by ID.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if id == "" {
		return divyavaani.ErrBadParameter.With("missing conversation id")
	}

	// Perform request
	return c.DoWithContext(ctx, client.MethodDelete, nil, client.OptPath("conversations", id))
}
