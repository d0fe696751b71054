package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	// Packages
	attribute "go.opentelemetry.io/otel/attribute"
	codes "go.opentelemetry.io/otel/codes"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) traceRequest(req *http.Request) {
	if c.trace == nil {
		return
	}
	if c.verbose {
		if data, err := httputil.DumpRequestOut(req, true); err == nil {
			c.trace.Write(data)
			fmt.Fprintln(c.trace)
			return
		}
	}
	fmt.Fprintf(c.trace, "-> %v %v\n", req.Method, req.URL)
}

func (c *Client) traceResponse(resp *http.Response, duration time.Duration) {
	if c.trace == nil {
		return
	}
	if c.verbose {
		if data, err := httputil.DumpResponse(resp, false); err == nil {
			c.trace.Write(data)
		}
	}
	fmt.Fprintf(c.trace, "<- %v (%v)\n", resp.Status, duration.Truncate(time.Millisecond))
}

func (c *Client) startSpan(ctx context.Context, method string, u *url.URL) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, nil
	}
	return c.tracer.Start(ctx, "client."+method, trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", u.String()),
	))
}

func endSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
