package run

import (
	"context"
	"fmt"

	"loom/agent"
	"loom/command"
	"loom/workflow"

	"github.com/spf13/pflag"
)

// RunCommand drives the multi-agent workflow: a planner agent drafts a
// rollout plan for the topic, a writer agent condenses it, every stage traced.
type RunCommand struct {
	topic string
}

func NewRunCommand() *RunCommand {
	return &RunCommand{}
}

func (c *RunCommand) Synopsis() string {
	return "Run the planner/writer workflow for a topic"
}

func (c *RunCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.StringVar(&c.topic, "topic", "How to design observability for a Go API service", "topic for the rollout plan")

	return flags
}

func (c *RunCommand) Execute(ctx context.Context, env *command.Environment, args []string) error {
	if !agent.HasAPIKey() {
		fmt.Println("Set GEMINI_API_KEY to run this workflow against live Gemini.")
		fmt.Println("Telemetry is still initialized with local fallback defaults.")
		return nil
	}

	client := agent.NewClientFromEnv()

	planner := client.Agent(env.Config.PlannerModel).
		Preamble("You are a planning assistant. Produce a structured plan first, then a 1-line summary.").
		Temperature(0.2).
		Build()

	writer := client.Agent(env.Config.WriterModel).
		Preamble("You are a concise writer. Return a short executive version of the plan.").
		MaxTokens(700).
		Build()

	orchestrator := workflow.NewOrchestrator(env.Provider, planner, writer, env.Logger)

	result, err := orchestrator.Run(ctx, c.topic)
	if err != nil {
		return err
	}

	fmt.Printf("=== Multi-agent output ===\n%s\n", result)

	if env.Config.ArchivePath != "" {
		fmt.Printf("\narchived trace: %s\n", result.TraceID)
	}

	return nil
}
