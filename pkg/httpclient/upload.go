package httpclient

import (
	"context"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	types "github.com/mutablelogic/go-divyavaani/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Upload submits a document to the service corpus as multipart form
// data. The request carries no timeout.
func (c *Client) Upload(ctx context.Context, req schema.UploadRequest) (*schema.UploadResponse, error) {
	if req.File.Path == "" || req.File.Body == nil {
		return nil, divyavaani.ErrBadParameter.With("missing file")
	}
	if req.UserID == "" {
		req.UserID = c.User()
	}
	if language, err := types.NormaliseLanguage(req.Language); err != nil {
		return nil, divyavaani.ErrBadParameter.With(err)
	} else {
		req.Language = language
	}

	// Create request
	payload, err := client.NewMultipartRequest(req, client.ContentTypeJson)
	if err != nil {
		return nil, err
	}

	// Perform request
	var response schema.UploadResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("upload"), client.OptNoTimeout()); err != nil {
		return nil, err
	}

	// Return the response
	return &response, nil
}
