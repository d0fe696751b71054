package main

import (
	"context"
	"net/url"
	"time"

	// Packages
	version "github.com/mutablelogic/go-divyavaani/pkg/version"
	otel "go.opentelemetry.io/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	otlpmetrichttp "go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const otelShutdownTimeout = 5 * time.Second

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// NewTelemetry exports traces and metrics to an OTLP collector at the
// given base endpoint, such as "http://localhost:4318". It installs the
// global providers so instrumented packages pick them up, and returns
// the tracer for command spans together with a shutdown function which
// flushes both exporters.
func NewTelemetry(ctx context.Context, endpoint, name string) (trace.Tracer, func(), error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, err
	}

	// The service resource shared by both signals
	res := sdkresource.NewSchemaless(
		attribute.String("service.name", name),
		attribute.String("service.version", version.Version()),
	)

	// Traces
	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(u.Host)}
	if u.Scheme == "http" {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}
	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)

	// Metrics
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(u.Host)}
	if u.Scheme == "http" {
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		shutdown(ctx, tracerProvider.Shutdown)
		return nil, nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	// Install the global providers
	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)

	return tracerProvider.Tracer(name), func() {
		shutdown(context.Background(), meterProvider.Shutdown, tracerProvider.Shutdown)
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// shutdown flushes each provider with a bounded deadline
func shutdown(ctx context.Context, fns ...func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, otelShutdownTimeout)
	defer cancel()
	for _, fn := range fns {
		_ = fn(ctx)
	}
}
