package tracing

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	otlpgrpc "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// newExporter builds the OTLP gRPC span exporter for cfg. The connection is
// lazy; only configuration errors surface here, transport errors are handled
// by the batch processor at export time.
func newExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	endpoint, insecure, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}

	opts := []otlpgrpc.Option{
		otlpgrpc.WithEndpoint(endpoint),
	}

	if insecure {
		opts = append(opts, otlpgrpc.WithInsecure())
	} else {
		tlsConf, err := buildTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlpgrpc.WithTLSCredentials(credentials.NewTLS(tlsConf)))
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpgrpc.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	return exporter, nil
}

// resolveEndpoint accepts both the bare host:port form and the URL form the
// OTEL_EXPORTER_OTLP_ENDPOINT convention uses; an http scheme implies a
// plaintext connection.
func resolveEndpoint(cfg Config) (string, bool, error) {
	endpoint := cfg.endpoint()
	insecure := cfg.Insecure

	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return "", false, fmt.Errorf("collector endpoint %q: %w", endpoint, err)
		}
		if parsed.Scheme == "http" {
			insecure = true
		}
		endpoint = parsed.Host
	}

	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		return "", false, fmt.Errorf("collector endpoint %q: %w", endpoint, err)
	}

	return endpoint, insecure, nil
}
