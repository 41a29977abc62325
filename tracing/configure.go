package tracing

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Provider owns the span pipeline for the process: one resource, one batched
// export transport. Configure it once at startup, Shutdown it once before
// exit or buffered spans are lost.
type Provider struct {
	tp       *sdktrace.TracerProvider
	recorder Recorder
}

// Configure builds the exporter and tracer provider from cfg and registers
// the provider as the process-wide default. Construction errors (malformed
// endpoint, unreadable CA certificate) are startup failures: nothing should
// create spans after one is returned.
//
// Extra opts are appended after the resource and batcher, so tests can
// replace the transport with sdktrace.WithSyncer and callers can attach
// secondary exporters.
func Configure(ctx context.Context, cfg Config, opts ...sdktrace.TracerProviderOption) (*Provider, error) {
	if val := os.Getenv("OTEL_SDK_DISABLED"); val == "true" {
		return &Provider{recorder: Recorder{Preview: cfg.previewBound()}}, nil
	}

	res, err := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	allOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if !cfg.withoutTransport {
		exporter, err := newExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		allOpts = append(allOpts, sdktrace.WithBatcher(exporter))
	}

	allOpts = append(allOpts, opts...)

	tp := sdktrace.NewTracerProvider(allOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return &Provider{tp: tp, recorder: Recorder{Preview: cfg.previewBound()}}, nil
}

// NewProvider wraps an already-built SDK provider. Used by tests to swap the
// transport for an in-memory exporter; Configure is the production path.
func NewProvider(tp *sdktrace.TracerProvider, recorder Recorder) *Provider {
	return &Provider{tp: tp, recorder: recorder}
}

// Tracer returns a tracer for the given instrumentation scope. A disabled
// provider hands out no-op tracers so callers never branch.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}

	return p.tp.Tracer(name)
}

func (p *Provider) Recorder() Recorder {
	return p.recorder
}

// ForceFlush exports every buffered span synchronously.
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}

	return p.tp.ForceFlush(ctx)
}

// Shutdown drains the batch buffer and releases the transport. Safe to call
// more than once; spans ended afterwards are dropped, not exported.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}

	return p.tp.Shutdown(ctx)
}
