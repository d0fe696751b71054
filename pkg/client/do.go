package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	// Packages
	backoff "github.com/cenkalti/backoff/v4"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type requestOpts struct {
	path      []string
	query     url.Values
	header    http.Header
	noTimeout bool
	skipRetry bool
	callback  func(TextStreamEvent) error
}

// RequestOpt is a function which modifies options for a single request
type RequestOpt func(*requestOpts) error

// cancelBody releases the attempt deadline when the response body
// is closed
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// maxRetryDelay caps the doubling backoff between attempts
	maxRetryDelay = 30 * time.Second

	// errBodyLimit caps how much of an error response body is read
	errBodyLimit = 1 << 20
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Do makes a request to the backend and decodes the response into out.
// See DoWithContext.
func (c *Client) Do(payload Payload, out any, opts ...RequestOpt) error {
	return c.DoWithContext(context.Background(), payload, out, opts...)
}

// DoWithContext makes a request to the backend and decodes the response
// into out. A nil payload is a GET request. Transport failures and
// status 429, 502, 503 and 504 are retried with doubling backoff, up to
// the configured retry count. Failures are returned as *APIError, except
// cancellation of the parent context which is returned as the context
// error.
func (c *Client) DoWithContext(ctx context.Context, payload Payload, out any, opts ...RequestOpt) error {
	o, err := applyRequestOpts(opts...)
	if err != nil {
		return err
	}
	if payload == nil {
		payload = NewRequest()
	}

	// The body is buffered once so retries can replay it
	var body []byte
	if payload.Type() != "" {
		if body, err = io.ReadAll(payload); err != nil {
			return err
		}
	}

	u, err := c.requestURL(o)
	if err != nil {
		return err
	}

	ctx, span := c.startSpan(ctx, payload.Method(), u)
	defer func() {
		endSpan(span, err)
	}()

	resp, err := c.roundtrip(ctx, payload, u, body, o)
	if err != nil {
		return err
	}
	err = c.decodeResponse(ctx, resp, out, o)
	return err
}

// DoStream makes a single request to the backend and returns the open
// response for the caller to consume. There is no deadline and no retry:
// a streaming response lives until the server or the context ends it.
func (c *Client) DoStream(ctx context.Context, payload Payload, opts ...RequestOpt) (*http.Response, error) {
	o, err := applyRequestOpts(opts...)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = NewRequest()
	}
	o.noTimeout = true

	var body []byte
	if payload.Type() != "" {
		if body, err = io.ReadAll(payload); err != nil {
			return nil, err
		}
	}

	u, err := c.requestURL(o)
	if err != nil {
		return nil, err
	}

	requestCounter.Add(ctx, 1)
	resp, err := c.attempt(ctx, payload, u, body, o)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, readErrorBody(resp)
	}
	return resp, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// OptPath appends path segments to the endpoint path
func OptPath(paths ...string) RequestOpt {
	return func(o *requestOpts) error {
		o.path = append(o.path, paths...)
		return nil
	}
}

// OptQuery sets query parameters on the request
func OptQuery(query url.Values) RequestOpt {
	return func(o *requestOpts) error {
		for key, values := range query {
			for _, value := range values {
				o.query.Add(key, value)
			}
		}
		return nil
	}
}

// OptReqHeader sets a header on the request
func OptReqHeader(key, value string) RequestOpt {
	return func(o *requestOpts) error {
		o.header.Set(key, value)
		return nil
	}
}

// OptToken sets the authorization token on the request
func OptToken(token Token) RequestOpt {
	return func(o *requestOpts) error {
		o.header.Set("Authorization", token.String())
		return nil
	}
}

// OptNoTimeout disables the per-attempt deadline for the request
func OptNoTimeout() RequestOpt {
	return func(o *requestOpts) error {
		o.noTimeout = true
		return nil
	}
}

// OptSkipRetry makes a single attempt regardless of the retry policy
func OptSkipRetry() RequestOpt {
	return func(o *requestOpts) error {
		o.skipRetry = true
		return nil
	}
}

// OptTextStreamCallback decodes the response as server-sent events,
// calling fn for each frame. Returning io.EOF from the callback ends
// decoding without error.
func OptTextStreamCallback(fn func(TextStreamEvent) error) RequestOpt {
	return func(o *requestOpts) error {
		o.callback = fn
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyRequestOpts(opts ...RequestOpt) (*requestOpts, error) {
	o := &requestOpts{
		query:  make(url.Values),
		header: make(http.Header),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// roundtrip runs the attempt loop until a response with a non-retryable
// status arrives, the attempts are exhausted, or the context ends.
func (c *Client) roundtrip(ctx context.Context, payload Payload, u *url.URL, body []byte, o *requestOpts) (*http.Response, error) {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = c.retryDelay
	schedule.RandomizationFactor = 0
	schedule.Multiplier = 2
	schedule.MaxInterval = maxRetryDelay
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	maxAttempts := c.retryCount + 1
	if o.skipRetry {
		maxAttempts = 1
	}
	for attempt := uint(1); ; attempt++ {
		requestCounter.Add(ctx, 1)
		resp, err := c.attempt(ctx, payload, u, body, o)

		var failure error
		if err != nil {
			if ctx.Err() != nil {
				// The parent context ended, which is not a request failure
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// The attempt deadline passed: timeouts are not retried
				return nil, WrapError(err)
			}
			failure = WrapError(err)
		} else if retryStatus(resp.StatusCode) {
			failure = readErrorBody(resp)
			resp.Body.Close()
		} else {
			return resp, nil
		}

		if attempt >= maxAttempts {
			return nil, failure
		}
		retryCounter.Add(ctx, 1)
		select {
		case <-time.After(schedule.NextBackOff()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// attempt makes one request. The attempt deadline, when set, is released
// when the response body is closed.
func (c *Client) attempt(ctx context.Context, payload Payload, u *url.URL, body []byte, o *requestOpts) (*http.Response, error) {
	var cancel context.CancelFunc
	if c.timeout > 0 && !o.noTimeout {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, payload.Method(), u.String(), reader)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}

	// Client headers, then content negotiation, then request headers
	for key := range c.header {
		req.Header.Set(key, c.header.Get(key))
	}
	if mimetype := payload.Type(); mimetype != "" {
		req.Header.Set("Content-Type", mimetype)
	}
	if accept := payload.Accept(); accept != "" && accept != ContentTypeAny {
		req.Header.Set("Accept", accept)
	}
	for key := range o.header {
		req.Header.Set(key, o.header.Get(key))
	}

	c.traceRequest(req)
	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}
	c.traceResponse(resp, time.Since(start))

	if cancel != nil {
		resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	}
	return resp, nil
}

func (c *Client) decodeResponse(ctx context.Context, resp *http.Response, out any, o *requestOpts) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorBody(resp)
	}

	// Streaming responses are dispatched frame by frame
	if o.callback != nil {
		err := NewTextStream().Decode(resp.Body, func(event TextStreamEvent) error {
			streamEventCount.Add(ctx, 1)
			return o.callback(event)
		})
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	switch out := out.(type) {
	case nil:
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*out = data
		return nil
	case io.Writer:
		_, err := io.Copy(out, resp.Body)
		return err
	default:
		return json.NewDecoder(resp.Body).Decode(out)
	}
}

// requestURL resolves the endpoint, path segments and query for a request
func (c *Client) requestURL(o *requestOpts) (*url.URL, error) {
	u := c.endpoint.JoinPath(o.path...)
	if len(o.query) > 0 {
		query := u.Query()
		for key, values := range o.query {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		u.RawQuery = query.Encode()
	}
	return u, nil
}

// readErrorBody decodes an error response into an APIError. The body is
// read but not closed.
func readErrorBody(resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	apiErr := NewAPIError(resp.StatusCode, "")
	if len(data) == 0 {
		return apiErr
	}

	// Backends disagree on the error body shape, so take the first of
	// detail, message or error
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		var detail string
		if len(body.Detail) > 0 {
			json.Unmarshal(body.Detail, &detail)
		}
		switch {
		case detail != "":
			apiErr.Message = detail
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		}
		apiErr.Code = body.Code
		apiErr.Details = data
	}
	return apiErr
}

// retryStatus returns true for statuses which indicate a transient
// server-side condition
func retryStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
