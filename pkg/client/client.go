/*
client implements a generic HTTP client for the DivyaVaani backend, with
retries, per-attempt timeouts, error classification and server-sent event
streaming.
*/
package client

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	// Packages
	divyavaani "github.com/mutablelogic/go-divyavaani"
	otel "go.opentelemetry.io/otel"
	metric "go.opentelemetry.io/otel/metric"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*http.Client

	endpoint   *url.URL
	header     http.Header
	timeout    time.Duration
	retryCount uint
	retryDelay time.Duration
	trace      io.Writer
	verbose    bool
	tracer     trace.Tracer
}

// ClientOpt is a function which modifies client options
type ClientOpt func(*Client) error

// Token is an authorization token with a scheme, such as Bearer
type Token struct {
	Scheme string `json:"scheme,omitempty"`
	Value  string `json:"access_token,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// Bearer is the authorization scheme for bearer tokens
	Bearer = "Bearer"

	// DefaultTimeout is the per-attempt request deadline
	DefaultTimeout = 30 * time.Second

	// DefaultRetryCount is the number of retries after a failed attempt
	DefaultRetryCount = 3

	// DefaultRetryDelay is the backoff delay before the first retry,
	// doubling on each subsequent retry
	DefaultRetryDelay = time.Second

	// DefaultUserAgent is the user agent when none is set
	DefaultUserAgent = "mutablelogic/go-divyavaani"
)

var (
	meter            = otel.Meter("github.com/mutablelogic/go-divyavaani/pkg/client")
	requestCounter   metric.Int64Counter
	retryCounter     metric.Int64Counter
	streamEventCount metric.Int64Counter
)

func init() {
	requestCounter, _ = meter.Int64Counter("client.requests", metric.WithDescription("Requests made to the backend"))
	retryCounter, _ = meter.Int64Counter("client.retries", metric.WithDescription("Request attempts which were retried"))
	streamEventCount, _ = meter.Int64Counter("client.stream.events", metric.WithDescription("Server-sent events received"))
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new client with the given options. The endpoint option
// is required.
func New(opts ...ClientOpt) (*Client, error) {
	c := &Client{
		Client:     &http.Client{},
		header:     make(http.Header),
		timeout:    DefaultTimeout,
		retryCount: DefaultRetryCount,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// The endpoint is the single point of configuration for where the
	// backend lives
	if c.endpoint == nil {
		return nil, divyavaani.ErrBadParameter.With("missing endpoint")
	}
	if c.header.Get("User-Agent") == "" {
		c.header.Set("User-Agent", DefaultUserAgent)
	}

	// Return success
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Endpoint returns the base URL for the client
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// SetToken replaces the authorization token on every subsequent request.
// A zero token removes the authorization header.
func (c *Client) SetToken(token Token) {
	if token.Scheme == "" || token.Value == "" {
		c.header.Del("Authorization")
	} else {
		c.header.Set("Authorization", token.String())
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%v %v", t.Scheme, t.Value)
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptEndpoint sets the base URL for the backend
func OptEndpoint(endpoint string) ClientOpt {
	return func(c *Client) error {
		u, err := url.Parse(endpoint)
		if err != nil {
			return divyavaani.ErrBadParameter.Withf("invalid endpoint %q", endpoint)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return divyavaani.ErrBadParameter.Withf("invalid endpoint scheme %q", u.Scheme)
		}
		c.endpoint = u
		return nil
	}
}

// OptTimeout sets the per-attempt deadline. A zero duration disables
// the deadline.
func OptTimeout(timeout time.Duration) ClientOpt {
	return func(c *Client) error {
		if timeout < 0 {
			return divyavaani.ErrBadParameter.With("negative timeout")
		}
		c.timeout = timeout
		return nil
	}
}

// OptRetry sets the number of retries after a failed attempt and the
// backoff delay before the first retry. The delay doubles on each
// subsequent retry.
func OptRetry(count uint, delay time.Duration) ClientOpt {
	return func(c *Client) error {
		if count > 0 && delay <= 0 {
			return divyavaani.ErrBadParameter.With("retry delay must be positive")
		}
		c.retryCount = count
		c.retryDelay = delay
		return nil
	}
}

// OptHeader sets a header on every request
func OptHeader(key, value string) ClientOpt {
	return func(c *Client) error {
		c.header.Set(key, value)
		return nil
	}
}

// OptUserAgent sets the user agent on every request
func OptUserAgent(value string) ClientOpt {
	return func(c *Client) error {
		c.header.Set("User-Agent", value)
		return nil
	}
}

// OptReqToken sets the authorization token on every request
func OptReqToken(token Token) ClientOpt {
	return func(c *Client) error {
		if token.Scheme == "" || token.Value == "" {
			return divyavaani.ErrBadParameter.With("invalid token")
		}
		c.header.Set("Authorization", token.String())
		return nil
	}
}

// OptTransport sets the underlying roundtripper, used to inject a
// transport in tests
func OptTransport(rt http.RoundTripper) ClientOpt {
	return func(c *Client) error {
		c.Client.Transport = rt
		return nil
	}
}

// OptTrace writes requests and responses to the writer, with bodies
// when verbose is set
func OptTrace(w io.Writer, verbose bool) ClientOpt {
	return func(c *Client) error {
		c.trace = w
		c.verbose = verbose
		return nil
	}
}

// OptTracer emits a span for each request through the given tracer
func OptTracer(tracer trace.Tracer) ClientOpt {
	return func(c *Client) error {
		c.tracer = tracer
		return nil
	}
}
