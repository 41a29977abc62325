package tracing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncationKeepsTrueLength(t *testing.T) {
	tp, exporter := createTraceProvider()
	defer tp.Shutdown(context.Background())

	recorder := Recorder{Preview: 120}
	payload := strings.Repeat("x", 500)

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	recorder.Input(span, payload)
	span.End()

	stubs := exporter.GetSpans()
	require.Len(t, stubs, 1)

	attrs := attrMap(stubs[0])
	require.Len(t, attrs[KeyInput].AsString(), 120)
	require.Equal(t, int64(500), attrs[KeyInputLength].AsInt64())
	require.Len(t, attrs[KeyInputDigest].AsString(), 64)
}

func TestShortPayloadRecordedWhole(t *testing.T) {
	tp, exporter := createTraceProvider()
	defer tp.Shutdown(context.Background())

	recorder := Recorder{Preview: 120}

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	recorder.Output(span, "plan text")
	span.End()

	attrs := attrMap(exporter.GetSpans()[0])
	require.Equal(t, "plan text", attrs[KeyOutput].AsString())
	require.Equal(t, int64(9), attrs[KeyOutputLength].AsInt64())
}

func TestStructuredPayloadSerializedAsJson(t *testing.T) {
	tp, exporter := createTraceProvider()
	defer tp.Shutdown(context.Background())

	recorder := Recorder{}

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	recorder.Input(span, map[string]any{"topic": "X"})
	span.End()

	attrs := attrMap(exporter.GetSpans()[0])
	require.JSONEq(t, `{"topic":"X"}`, attrs[KeyInput].AsString())
}

func TestLastWriteWinsBeforeEnd(t *testing.T) {
	tp, exporter := createTraceProvider()
	defer tp.Shutdown(context.Background())

	recorder := Recorder{}

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	recorder.Input(span, "first")
	recorder.Input(span, "second")
	span.End()

	attrs := attrMap(exporter.GetSpans()[0])
	require.Equal(t, "second", attrs[KeyInput].AsString())
	require.Equal(t, int64(6), attrs[KeyInputLength].AsInt64())
}

func TestRecordingAfterEndIsNoop(t *testing.T) {
	tp, exporter := createTraceProvider()
	defer tp.Shutdown(context.Background())

	recorder := Recorder{}

	_, span := tp.Tracer("test").Start(context.Background(), "stage")
	span.End()
	recorder.Output(span, "late")

	attrs := attrMap(exporter.GetSpans()[0])
	_, found := attrs[KeyOutput]
	require.False(t, found)
}

func TestDefaultPreviewBound(t *testing.T) {
	recorder := Recorder{}
	require.Equal(t, DefaultPreviewBound, recorder.bound())

	recorder = Recorder{Preview: 120}
	require.Equal(t, 120, recorder.bound())
}
