package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigureDisabledByEnv(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	provider, err := Configure(context.Background(), Config{ServiceName: "loom"})
	require.NoError(t, err)

	// no pipeline, but spans must still be safe to create
	_, span := provider.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestConfigureCarriesServiceResource(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	provider, err := Configure(context.Background(),
		Config{ServiceName: "loom", ServiceVersion: "test", withoutTransport: true},
		sdktrace.WithSyncer(exporter),
	)
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	_, span := provider.Tracer("test").Start(context.Background(), "probe")
	span.End()

	stubs := exporter.GetSpans()
	require.Len(t, stubs, 1)

	attrs := stubs[0].Resource.Attributes()
	names := map[string]string{}
	for _, kv := range attrs {
		names[string(kv.Key)] = kv.Value.AsString()
	}

	require.Equal(t, "loom", names[string(semconv.ServiceNameKey)])
	require.Equal(t, "go", names[string(semconv.TelemetrySDKLanguageKey)])
}

func TestShutdownDrainsBatchBuffer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()

	provider, err := Configure(context.Background(),
		Config{ServiceName: "loom", withoutTransport: true},
		sdktrace.WithBatcher(exporter),
	)
	require.NoError(t, err)

	_, span := provider.Tracer("test").Start(context.Background(), "buffered")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
	require.Len(t, exporter.GetSpans(), 1)

	// spans ended after shutdown are dropped, not exported
	_, late := provider.Tracer("test").Start(context.Background(), "late")
	late.End()
	require.Len(t, exporter.GetSpans(), 1)
}

func TestResolveEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
		insecure bool
		fails    bool
	}{
		{raw: "", expected: DefaultEndpoint},
		{raw: "collector:4317", expected: "collector:4317"},
		{raw: "http://localhost:4317", expected: "localhost:4317", insecure: true},
		{raw: "https://ingest.example.com:443", expected: "ingest.example.com:443"},
		{raw: "not an endpoint", fails: true},
		{raw: "https://no-port.example.com", fails: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			endpoint, insecure, err := resolveEndpoint(Config{Endpoint: tc.raw})
			if tc.fails {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, endpoint)
			require.Equal(t, tc.insecure, insecure)
		})
	}
}

func TestConfigureRejectsMalformedEndpoint(t *testing.T) {
	_, err := newExporter(context.Background(), Config{Endpoint: "not an endpoint"})
	require.Error(t, err)
}

func TestTLSConfigErrors(t *testing.T) {
	t.Run("missing CA file", func(t *testing.T) {
		_, err := buildTLSConfig(TLSConfig{CACertPath: "does/not/exist.pem"})
		require.Error(t, err)
	})

	t.Run("unparsable CA file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not pem"), 0o600))

		_, err := buildTLSConfig(TLSConfig{CACertPath: path})
		require.Error(t, err)
	})

	t.Run("skip verify", func(t *testing.T) {
		conf, err := buildTLSConfig(TLSConfig{SkipVerify: true})
		require.NoError(t, err)
		require.True(t, conf.InsecureSkipVerify)
	})
}

func TestIngestionHeadersBuildExporter(t *testing.T) {
	exporter, err := newExporter(context.Background(), Config{
		Endpoint: "ingest.example.com:443",
		Headers:  map[string]string{"loom-ingestion-key": "abc123"},
	})
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
}
