package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"loom/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Completer is the external collaborator boundary: one prompt in, one text
// answer out. agent.Agent satisfies it; tests fake it.
type Completer interface {
	Model() string
	Prompt(ctx context.Context, prompt string) (string, error)
}

// Orchestrator runs the rollout-plan workflow: a planner stage drafts a plan
// for the topic, a writer stage condenses it. Every stage is a child span of
// the orchestrator root, with prompts and responses captured under the
// reserved payload keys.
type Orchestrator struct {
	tracer   trace.Tracer
	recorder tracing.Recorder
	planner  Completer
	writer   Completer
	logger   *slog.Logger
}

func NewOrchestrator(provider *tracing.Provider, planner, writer Completer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		tracer:   provider.Tracer("loom/workflow"),
		recorder: provider.Recorder(),
		planner:  planner,
		writer:   writer,
		logger:   logger,
	}
}

type Result struct {
	Plan    string
	Summary string
	TraceID string
}

func (r *Result) String() string {
	return fmt.Sprintf("Plan:\n%s\n\nExecutive summary:\n%s", r.Plan, r.Summary)
}

// Run executes both stages under one root span. A failed stage ends its span
// with error status and propagates; the root span closes either way.
func (o *Orchestrator) Run(ctx context.Context, topic string) (*Result, error) {
	ctx, span := o.tracer.Start(ctx, "agent.orchestrator", trace.WithAttributes(
		attribute.String("workflow.topic", topic),
		attribute.String("workflow.run_id", uuid.NewString()),
	))
	defer span.End()

	result := &Result{TraceID: span.SpanContext().TraceID().String()}

	o.logger.Info("running planner step", "agent", "planner", "model", o.planner.Model())
	plan, err := o.stage(ctx, "planner", o.planner,
		map[string]any{"topic": topic},
		fmt.Sprintf("Create a practical rollout plan for this topic: %s", topic))
	if err != nil {
		return nil, tracing.Error(span, err)
	}
	result.Plan = plan

	o.logger.Info("running rewrite step", "agent", "writer", "model", o.writer.Model())
	summary, err := o.stage(ctx, "writer", o.writer,
		map[string]any{"plan_length": len(plan)},
		fmt.Sprintf("Summarize this plan into 5 short bullet points:\n\n%s", plan))
	if err != nil {
		return nil, tracing.Error(span, err)
	}
	result.Summary = summary

	tracing.Ok(span)
	return result, nil
}

// stage is the instrumented call wrapper: open a span named for the stage,
// record the input, make the one blocking call, record the output or the
// error. The deferred End runs on every exit path, cancellation included.
func (o *Orchestrator) stage(ctx context.Context, name string, agent Completer, input map[string]any, prompt string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "agent."+name, trace.WithAttributes(
		attribute.String("agent.role", name),
		attribute.String("agent.model", agent.Model()),
	))
	defer span.End()

	input["prompt"] = prompt
	o.recorder.Input(span, input)

	answer, err := agent.Prompt(ctx, prompt)
	if err != nil {
		return "", tracing.Errorf(span, "%s stage: %w", name, err)
	}

	o.recorder.Output(span, answer)
	tracing.Ok(span)

	return answer, nil
}
