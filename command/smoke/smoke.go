package smoke

import (
	"context"
	"fmt"
	"time"

	"loom/command"
	"loom/tracing"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// SmokeCommand emits a small concurrent trace against the configured
// collector, for verifying the export pipeline without touching any model.
type SmokeCommand struct {
	marker string
	probes int
}

func NewSmokeCommand() *SmokeCommand {
	return &SmokeCommand{}
}

func (c *SmokeCommand) Synopsis() string {
	return "Emit a probe trace to the configured collector"
}

func (c *SmokeCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("smoke", pflag.ContinueOnError)
	flags.StringVar(&c.marker, "marker", "loom-smoke", "marker attribute to find the trace by")
	flags.IntVar(&c.probes, "probes", 3, "concurrent child probes to emit")

	return flags
}

func (c *SmokeCommand) Execute(ctx context.Context, env *command.Environment, args []string) error {
	tr := env.Provider.Tracer("loom/smoke")

	ctx, span := tr.Start(ctx, "smoke.probe", trace.WithAttributes(
		attribute.String("marker", c.marker),
	))
	defer span.End()

	wg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.probes; i++ {
		i := i
		wg.Go(func() error {
			_, child := tr.Start(ctx, fmt.Sprintf("smoke.probe.%d", i))
			defer child.End()

			time.Sleep(200 * time.Millisecond)
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return tracing.Error(span, err)
	}

	tracing.Ok(span)
	span.End()

	if err := env.Provider.ForceFlush(ctx); err != nil {
		return err
	}

	fmt.Printf("smoke probe complete marker=%s trace=%s\n", c.marker, span.SpanContext().TraceID().String())
	return nil
}
