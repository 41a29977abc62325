package tracing

// DefaultPreviewBound caps how many characters of a recorded payload are kept
// on the span; the full length is always recorded alongside.
const DefaultPreviewBound = 180

// DefaultEndpoint is the conventional local OTLP gRPC collector address.
const DefaultEndpoint = "localhost:4317"

type Config struct {
	ServiceName    string
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string

	// Insecure disables TLS on the export connection. Local collectors only.
	Insecure bool

	// Headers are sent as gRPC metadata on every export call, e.g. an
	// ingestion key for a hosted collector.
	Headers map[string]string

	TLS TLSConfig

	// PreviewBound overrides DefaultPreviewBound when > 0.
	PreviewBound int

	// withoutTransport skips exporter construction so tests can supply their
	// own span processor.
	withoutTransport bool
}

type TLSConfig struct {
	// CACertPath points at a PEM bundle to verify the collector with,
	// instead of the system pool.
	CACertPath string

	// SkipVerify disables certificate validation. Never in production.
	SkipVerify bool
}

func (c Config) previewBound() int {
	if c.PreviewBound > 0 {
		return c.PreviewBound
	}

	return DefaultPreviewBound
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}

	return DefaultEndpoint
}
