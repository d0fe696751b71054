package httpclient

import (
	"context"
	"net/http"
	"time"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	oauth2 "golang.org/x/oauth2"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// tokenResponse is the wire form of an issued or refreshed token
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int64        `json:"expires_in,omitempty"`
	User         *schema.User `json:"user,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Login authenticates with the service and installs the issued token on
// the client. The client identity becomes the authenticated user, which
// lifts the guest rate limit, and the returned credentials can be stored
// for later reuse.
func (c *Client) Login(ctx context.Context, req schema.LoginRequest) (*schema.AuthCredentials, error) {
	if req.Email == "" || req.Password == "" {
		return nil, divyavaani.ErrBadParameter.With("missing email or password")
	}

	// Create request
	payload, err := client.NewJSONRequest(req)
	if err != nil {
		return nil, err
	}

	// Perform request
	var response tokenResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("auth", "login"), client.OptSkipRetry()); err != nil {
		return nil, err
	}

	// Install the token and identity on the client
	credentials := c.install(response)
	if credentials.User != nil {
		if err := c.SetUser(credentials.User.ID); err != nil {
			return nil, err
		}
	}

	// Return the credentials
	return credentials, nil
}

// Logout revokes the session with the service, removes the token from
// the client and reverts to a fresh guest identity.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.DoWithContext(ctx, client.NewRequestEx(http.MethodPost, client.ContentTypeAny), nil, client.OptPath("auth", "logout"), client.OptSkipRetry()); err != nil {
		return err
	}

	// Revert to an anonymous client
	c.SetToken(client.Token{})
	return c.SetUser(NewGuestID())
}

// Refresh exchanges the refresh token in the credentials for a new
// access token, installing it on the client.
func (c *Client) Refresh(ctx context.Context, credentials *schema.AuthCredentials) (*schema.AuthCredentials, error) {
	if credentials == nil || credentials.Token == nil || credentials.RefreshToken == "" {
		return nil, divyavaani.ErrBadParameter.With("missing refresh token")
	}

	// Create request
	payload, err := client.NewJSONRequest(struct {
		RefreshToken string `json:"refresh_token"`
	}{credentials.RefreshToken})
	if err != nil {
		return nil, err
	}

	// Perform request
	var response tokenResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("auth", "refresh"), client.OptSkipRetry()); err != nil {
		return nil, err
	}
	if response.User == nil {
		response.User = credentials.User
	}

	// Install the token on the client
	return c.install(response), nil
}

// Me returns the account the client is authenticated as.
func (c *Client) Me(ctx context.Context) (*schema.User, error) {
	var response schema.User
	if err := c.DoWithContext(ctx, client.NewRequest(), &response, client.OptPath("auth", "me")); err != nil {
		return nil, err
	}
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// install sets the token on the client and bundles it as credentials
func (c *Client) install(response tokenResponse) *schema.AuthCredentials {
	token := &oauth2.Token{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
		TokenType:    response.TokenType,
	}
	if token.TokenType == "" {
		token.TokenType = client.Bearer
	}
	if response.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(response.ExpiresIn) * time.Second)
	}
	c.SetToken(client.Token{Scheme: token.TokenType, Value: token.AccessToken})
	return &schema.AuthCredentials{
		Token:    token,
		Endpoint: c.Endpoint(),
		User:     response.User,
	}
}
