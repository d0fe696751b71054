/*
httpclient provides typed methods for interacting with the DivyaVaani
guidance service: streaming queries, conversations, feedback, document
upload, voice, analytics and authentication.
*/
package httpclient

import (
	// Packages
	uuid "github.com/google/uuid"
	divyavaani "github.com/mutablelogic/go-divyavaani"
	client "github.com/mutablelogic/go-divyavaani/pkg/client"
	rate "golang.org/x/time/rate"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a DivyaVaani HTTP client that wraps the base HTTP client
// and provides typed methods for the guidance API.
type Client struct {
	*client.Client

	user    string        // identity sent with queries when none is given
	limiter *rate.Limiter // client-side throttle for query operations
}

var (
	_ divyavaani.Querier     = (*Client)(nil)
	_ divyavaani.Transcriber = (*Client)(nil)
	_ divyavaani.Speaker     = (*Client)(nil)
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// GuestPrefix marks user identities generated on the client
	GuestPrefix = "guest-"
)

// Guest sessions are throttled on the client so an unauthenticated user
// cannot flood the service
var guestRateLimit = rate.Limit(6.0 / 60.0)

const guestRateBurst = 2

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new DivyaVaani HTTP client with the given base URL and
// options. The url parameter should point to the API endpoint, e.g.
// "https://api.divyavaani.example/api/v1". When no user identity is set
// a guest identity is generated.
func New(url string, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	if client, err := client.New(append(opts, client.OptEndpoint(url))...); err != nil {
		return nil, err
	} else {
		c.Client = client
	}

	// A guest identity is rate limited on the client
	c.user = NewGuestID()
	c.limiter = rate.NewLimiter(guestRateLimit, guestRateBurst)

	return c, nil
}

// NewGuestID returns a new client-generated guest identity
func NewGuestID() string {
	return GuestPrefix + uuid.New().String()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// User returns the identity sent with queries when none is given
func (c *Client) User() string {
	return c.user
}

// SetUser sets the identity sent with queries. An authenticated identity
// removes the guest rate limit, and a guest identity restores it.
func (c *Client) SetUser(user string) error {
	if user == "" {
		return divyavaani.ErrBadParameter.With("empty user")
	}
	c.user = user
	switch {
	case !IsGuest(user):
		c.limiter = nil
	case c.limiter == nil:
		c.limiter = rate.NewLimiter(guestRateLimit, guestRateBurst)
	}
	return nil
}

// IsGuest returns true when the identity was generated on the client
func IsGuest(user string) bool {
	return len(user) > len(GuestPrefix) && user[:len(GuestPrefix)] == GuestPrefix
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// throttle enforces the client-side rate limit for query operations
func (c *Client) throttle() error {
	if c.limiter != nil && !c.limiter.Allow() {
		return divyavaani.ErrRateLimited
	}
	return nil
}
