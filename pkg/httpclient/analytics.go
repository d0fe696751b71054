package httpclient

import (
	"context"
	"time"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	opt "github.com/mutablelogic/go-divyavaani/pkg/opt"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// PopularQuestions returns the most frequently asked questions. Use
// WithCategory and WithLanguage to filter, WithSince to bound the
// reporting window, and WithLimit and WithOffset to paginate results.
func (c *Client) PopularQuestions(ctx context.Context, opts ...opt.Opt) (*schema.PopularQuestionsResponse, error) {
	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("analytics", "popular")}
	if q := o.Query(opt.CategoryKey, opt.LanguageKey, opt.SinceKey, opt.LimitKey, opt.OffsetKey); len(q) > 0 {
		reqOpts = append(reqOpts, client.OptQuery(q))
	}

	// Perform request
	var response schema.PopularQuestionsResponse
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}

// Track reports a client-side interaction to the service. Events are
// advisory: callers may ignore the returned error. The client identity
// and the current time fill in any missing user or timestamp.
func (c *Client) Track(ctx context.Context, event schema.AnalyticsEvent) error {
	if event.Name == "" {
		return divyavaani.ErrBadParameter.With("missing event name")
	}
	if event.UserID == "" {
		event.UserID = c.user
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	// Create request
	req, err := client.NewJSONRequest(event)
	if err != nil {
		return err
	}

	// Perform request, without retry
	return c.DoWithContext(ctx, req, nil, client.OptPath("analytics", "events"), client.OptSkipRetry())
}

// Usage returns aggregate usage for the service. Use WithSince to bound
// the reporting window.
func (c *Client) Usage(ctx context.Context, opts ...opt.Opt) (*schema.UsageSummary, error) {
	// Apply options
	o, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	// Create request
	req := client.NewRequest()
	reqOpts := []client.RequestOpt{client.OptPath("analytics", "usage")}
	if q := o.Query(opt.SinceKey); len(q) > 0 {
		reqOpts = append(reqOpts, client.OptQuery(q))
	}

	// Perform request
	var response schema.UsageSummary
	if err := c.DoWithContext(ctx, req, &response, reqOpts...); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}
