package show

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loom/archive"
	"loom/command"
	"loom/domain"
	"loom/tracing"
	"loom/util"

	"github.com/spf13/pflag"
)

// ShowCommand prints archived traces: recent roots when called bare, the
// full span tree when given a trace id.
type ShowCommand struct {
	limit int
}

func NewShowCommand() *ShowCommand {
	return &ShowCommand{}
}

func (c *ShowCommand) Synopsis() string {
	return "Print traces from the local archive"
}

func (c *ShowCommand) Flags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
	flags.IntVar(&c.limit, "limit", 10, "recent traces to list")

	return flags
}

func (c *ShowCommand) Execute(ctx context.Context, env *command.Environment, args []string) error {
	if env.Config.ArchivePath == "" {
		return errors.New("no archive configured, set LOOM_ARCHIVE")
	}

	reader, err := archive.OpenReader(env.Config.ArchivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	if len(args) == 0 {
		return c.listRecent(ctx, reader)
	}

	return c.printTrace(ctx, reader, args[0])
}

func (c *ShowCommand) listRecent(ctx context.Context, reader *archive.Reader) error {
	roots, err := reader.Recent(ctx, c.limit)
	if err != nil {
		return err
	}

	for _, span := range roots {
		fmt.Printf("%s  %-20s  %-6s  %s\n",
			span.TraceID,
			span.Name,
			span.Status.Code,
			span.StartTime.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

func (c *ShowCommand) printTrace(ctx context.Context, reader *archive.Reader, traceID string) error {
	spans, err := reader.Trace(ctx, traceID)
	if err != nil {
		return err
	}

	if len(spans) == 0 {
		return fmt.Errorf("no spans archived for trace %s", traceID)
	}

	children := map[string][]*domain.Span{}
	for _, span := range spans {
		children[span.ParentID] = append(children[span.ParentID], span)
	}

	for _, root := range children[""] {
		printSpan(root, children, 0)
	}

	return nil
}

func printSpan(span *domain.Span, children map[string][]*domain.Span, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s  [%s]  %s\n", indent, span.Name, span.Status.Code, span.Duration())

	if preview, found := domain.Lookup(span.Attributes, tracing.KeyInput); found {
		fmt.Printf("%s  input:  %s\n", indent, util.Elide(preview.AsString(), 80))
	}
	if preview, found := domain.Lookup(span.Attributes, tracing.KeyOutput); found {
		fmt.Printf("%s  output: %s\n", indent, util.Elide(preview.AsString(), 80))
	}

	for _, child := range children[span.SpanID] {
		printSpan(child, children, depth+1)
	}
}
