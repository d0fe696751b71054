package schema

import (
	"time"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
	oauth2 "golang.org/x/oauth2"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// LoginRequest represents a request to authenticate a user
type LoginRequest struct {
	Email    string `json:"email" help:"Account email"`
	Password string `json:"password" help:"Account password"`
}

// User represents an authenticated account
type User struct {
	ID      string    `json:"id"`
	Email   string    `json:"email,omitempty"`
	Name    string    `json:"name,omitempty"`
	Created time.Time `json:"created,omitzero"`
}

// AuthCredentials bundles an access token with the metadata needed to
// reuse or refresh it later
type AuthCredentials struct {
	*oauth2.Token

	// Endpoint is the service the token was issued by
	Endpoint string `json:"endpoint"`

	// User is the authenticated account, when known
	User *User `json:"user,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Valid returns true when the credentials hold a usable token
func (c *AuthCredentials) Valid() bool {
	return c != nil && c.Token.Valid()
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (u User) String() string {
	return types.Stringify(u)
}
