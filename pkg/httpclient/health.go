package httpclient

import (
	"context"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Health reports the service status and the status of its dependencies.
// The probe is never retried.
func (c *Client) Health(ctx context.Context) (*schema.HealthResponse, error) {
	var response schema.HealthResponse
	if err := c.DoWithContext(ctx, client.NewRequest(), &response, client.OptPath("health"), client.OptSkipRetry()); err != nil {
		return nil, err
	}
	return &response, nil
}
