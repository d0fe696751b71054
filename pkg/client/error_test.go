package client_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	// Packages
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	assert "github.com/stretchr/testify/assert"
)

func Test_error_001(t *testing.T) {
	// Classification from the HTTP status code
	assert := assert.New(t)

	assert.Equal(client.ErrorTypeNetwork, client.NewAPIError(0, "connection refused").Type)
	assert.Equal(client.ErrorTypeTimeout, client.NewAPIError(408, "").Type)
	assert.Equal(client.ErrorTypeValidation, client.NewAPIError(400, "").Type)
	assert.Equal(client.ErrorTypeValidation, client.NewAPIError(404, "").Type)
	assert.Equal(client.ErrorTypeValidation, client.NewAPIError(429, "").Type)
	assert.Equal(client.ErrorTypeValidation, client.NewAPIError(499, "").Type)
	assert.Equal(client.ErrorTypeAPI, client.NewAPIError(500, "").Type)
	assert.Equal(client.ErrorTypeAPI, client.NewAPIError(503, "").Type)
	assert.Equal(client.ErrorTypeAPI, client.NewAPIError(302, "").Type)
}

func Test_error_002(t *testing.T) {
	// Classification from a transport-level failure
	assert := assert.New(t)

	timeout := client.WrapError(context.DeadlineExceeded)
	assert.Equal(client.ErrorTypeTimeout, timeout.Type)
	assert.Equal(408, timeout.Status)
	assert.Equal("TIMEOUT", timeout.Code)

	network := client.WrapError(&url.Error{Op: "Post", URL: "http://localhost:1", Err: errors.New("connection refused")})
	assert.Equal(client.ErrorTypeNetwork, network.Type)
	assert.Equal(0, network.Status)

	unknown := client.WrapError(errors.New("something else"))
	assert.Equal(client.ErrorTypeUnknown, unknown.Type)
	assert.Equal(0, unknown.Status)
}

func Test_error_003(t *testing.T) {
	// Error strings and type names
	assert := assert.New(t)

	assert.Equal("NETWORK_ERROR", client.ErrorTypeNetwork.String())
	assert.Equal("TIMEOUT_ERROR", client.ErrorTypeTimeout.String())
	assert.Equal("VALIDATION_ERROR", client.ErrorTypeValidation.String())
	assert.Equal("API_ERROR", client.ErrorTypeAPI.String())
	assert.Equal("UNKNOWN_ERROR", client.ErrorTypeUnknown.String())

	err := client.NewAPIError(404, "no such conversation")
	assert.Contains(err.Error(), "no such conversation")
	assert.Contains(err.Error(), "VALIDATION_ERROR")
	assert.Contains(err.Error(), "404")

	// Default message comes from the status text
	assert.Contains(client.NewAPIError(503, "").Error(), "Service Unavailable")
}
