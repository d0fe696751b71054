package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	httpclient "github.com/mutablelogic/go-divyavaani/pkg/httpclient"
	schema "github.com/mutablelogic/go-divyavaani/pkg/schema"
	store "github.com/mutablelogic/go-divyavaani/pkg/store"
	version "github.com/mutablelogic/go-divyavaani/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns an httpclient.Client configured from the global flags,
// with stored credentials or the persisted guest identity installed.
func (g *Globals) Client() (*httpclient.Client, error) {
	opts := []client.ClientOpt{
		client.OptUserAgent(version.UserAgent(g.execName)),
	}
	if g.Debug || g.Verbose {
		opts = append(opts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.tracer != nil {
		opts = append(opts, client.OptTracer(g.tracer))
	}
	if g.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.Timeout))
	}

	// Create the client
	c, err := httpclient.New(g.Endpoint, opts...)
	if err != nil {
		return nil, err
	}

	// Install stored credentials, refreshing when expired
	if err := g.authenticate(c); err != nil {
		return nil, err
	}

	// Without credentials, use the guest identity assigned on first use
	if httpclient.IsGuest(c.User()) {
		user := g.defaults.GetString(defaultUser)
		if user == "" {
			user = httpclient.NewGuestID()
			if err := g.defaults.Set(defaultUser, user); err != nil {
				return nil, err
			}
		}
		if err := c.SetUser(user); err != nil {
			return nil, err
		}
	}

	// Return success
	return c, nil
}

// CredentialStore returns the store which persists login credentials to
// the configuration directory, encrypted with the passphrase.
func (g *Globals) CredentialStore() (schema.CredentialStore, error) {
	if g.Passphrase == "" {
		return nil, divyavaani.ErrBadParameter.With("set a passphrase with --passphrase or DIVYAVAANI_PASSPHRASE")
	}
	return store.NewFileCredentialStore(g.Passphrase, filepath.Join(g.configDir, "credentials"))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// authenticate installs credentials stored for the endpoint on the
// client, exchanging the refresh token when the access token has
// expired. Missing or unusable credentials leave the client as a guest.
func (g *Globals) authenticate(c *httpclient.Client) error {
	if g.Passphrase == "" {
		return nil
	}
	credentials, err := g.CredentialStore()
	if err != nil {
		return err
	}
	credential, err := credentials.GetCredential(g.ctx, g.Endpoint)
	if errors.Is(err, divyavaani.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	// Exchange the refresh token when the access token has expired
	if !credential.Valid() {
		refreshed, err := c.Refresh(g.ctx, credential)
		if err != nil {
			g.logger.Debugf(g.ctx, "discarding stored credentials: %v", err)
			return credentials.DeleteCredential(g.ctx, g.Endpoint)
		}
		if err := credentials.SetCredential(g.ctx, g.Endpoint, *refreshed); err != nil {
			return err
		}
		credential = refreshed
	}

	// Install the token and identity on the client
	c.SetToken(client.Token{Scheme: credential.TokenType, Value: credential.AccessToken})
	if credential.User != nil {
		return c.SetUser(credential.User.ID)
	}
	return nil
}

// isNotFound reports whether an error is a not found response from the
// service.
func isNotFound(err error) bool {
	var apierr *client.APIError
	if errors.As(err, &apierr) {
		return apierr.Status == http.StatusNotFound
	}
	return errors.Is(err, divyavaani.ErrNotFound)
}
