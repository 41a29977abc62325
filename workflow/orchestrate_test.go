package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"loom/tracing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeAgent struct {
	model  string
	answer string
	err    error
	calls  []string
}

func (f *fakeAgent) Model() string { return f.model }

func (f *fakeAgent) Prompt(ctx context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func createOrchestrator(planner, writer Completer) (*Orchestrator, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	provider := tracing.NewProvider(tp, tracing.Recorder{Preview: 120})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewOrchestrator(provider, planner, writer, logger), exporter
}

func spanByName(stubs tracetest.SpanStubs, name string) *tracetest.SpanStub {
	for i := range stubs {
		if stubs[i].Name == name {
			return &stubs[i]
		}
	}
	return nil
}

func attrValue(stub *tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range stub.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunProducesNestedTrace(t *testing.T) {
	planner := &fakeAgent{model: "gemini-2.5-pro", answer: "plan text"}
	writer := &fakeAgent{model: "gemini-2.5-flash", answer: "summary text"}

	orchestrator, exporter := createOrchestrator(planner, writer)

	result, err := orchestrator.Run(context.Background(), "observability rollout")
	require.NoError(t, err)
	require.Equal(t, "plan text", result.Plan)
	require.Equal(t, "summary text", result.Summary)

	stubs := exporter.GetSpans()
	require.Len(t, stubs, 3)

	root := spanByName(stubs, "agent.orchestrator")
	require.NotNil(t, root)
	require.False(t, root.Parent.IsValid())
	require.Equal(t, codes.Ok, root.Status.Code)
	require.Equal(t, result.TraceID, root.SpanContext.TraceID().String())

	for _, name := range []string{"agent.planner", "agent.writer"} {
		child := spanByName(stubs, name)
		require.NotNil(t, child, name)
		require.Equal(t, root.SpanContext.SpanID(), child.Parent.SpanID())
		require.Equal(t, codes.Ok, child.Status.Code)
		require.False(t, child.EndTime.Before(child.StartTime))
	}

	// writer consumes the planner output
	require.Contains(t, writer.calls[0], "plan text")
}

func TestStagePayloadCapture(t *testing.T) {
	planner := &fakeAgent{model: "gemini-2.5-pro", answer: "plan text"}
	writer := &fakeAgent{model: "gemini-2.5-flash", answer: strings.Repeat("s", 400)}

	orchestrator, exporter := createOrchestrator(planner, writer)

	_, err := orchestrator.Run(context.Background(), "X")
	require.NoError(t, err)

	stubs := exporter.GetSpans()

	plannerSpan := spanByName(stubs, "agent.planner")
	input, found := attrValue(plannerSpan, tracing.KeyInput)
	require.True(t, found)
	require.Contains(t, input.AsString(), `"topic":"X"`)

	model, found := attrValue(plannerSpan, "agent.model")
	require.True(t, found)
	require.Equal(t, "gemini-2.5-pro", model.AsString())

	writerSpan := spanByName(stubs, "agent.writer")
	output, found := attrValue(writerSpan, tracing.KeyOutput)
	require.True(t, found)
	require.Len(t, output.AsString(), 120)

	length, found := attrValue(writerSpan, tracing.KeyOutputLength)
	require.True(t, found)
	require.Equal(t, int64(400), length.AsInt64())
}

func TestFailedStagePropagatesWithStageName(t *testing.T) {
	planner := &fakeAgent{model: "gemini-2.5-pro", err: errors.New("upstream unavailable")}
	writer := &fakeAgent{model: "gemini-2.5-flash", answer: "unused"}

	orchestrator, exporter := createOrchestrator(planner, writer)

	_, err := orchestrator.Run(context.Background(), "X")
	require.Error(t, err)
	require.Contains(t, err.Error(), "planner stage")
	require.ErrorContains(t, err, "upstream unavailable")

	stubs := exporter.GetSpans()
	require.Len(t, stubs, 2) // planner + root, writer never started

	plannerSpan := spanByName(stubs, "agent.planner")
	require.Equal(t, codes.Error, plannerSpan.Status.Code)
	require.False(t, plannerSpan.EndTime.IsZero())

	root := spanByName(stubs, "agent.orchestrator")
	require.Equal(t, codes.Error, root.Status.Code)

	require.Empty(t, writer.calls)
}

func TestWriterFailureStillClosesEverySpan(t *testing.T) {
	planner := &fakeAgent{model: "gemini-2.5-pro", answer: "plan text"}
	writer := &fakeAgent{model: "gemini-2.5-flash", err: fmt.Errorf("timeout")}

	orchestrator, exporter := createOrchestrator(planner, writer)

	_, err := orchestrator.Run(context.Background(), "X")
	require.Error(t, err)
	require.Contains(t, err.Error(), "writer stage")

	stubs := exporter.GetSpans()
	require.Len(t, stubs, 3)

	for i := range stubs {
		require.False(t, stubs[i].EndTime.IsZero(), stubs[i].Name)
	}
}

func TestSiblingRunsShareNoTrace(t *testing.T) {
	planner := &fakeAgent{model: "gemini-2.5-pro", answer: "plan"}
	writer := &fakeAgent{model: "gemini-2.5-flash", answer: "summary"}

	orchestrator, _ := createOrchestrator(planner, writer)

	first, err := orchestrator.Run(context.Background(), "a")
	require.NoError(t, err)

	second, err := orchestrator.Run(context.Background(), "b")
	require.NoError(t, err)

	require.NotEqual(t, first.TraceID, second.TraceID)
}
