package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"loom/archive"
	"loom/command/version"
	"loom/config"
	"loom/tracing"

	"github.com/hashicorp/cli"
	"github.com/spf13/pflag"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Environment is what a command gets to work with: resolved configuration,
// the process-wide telemetry provider, and a logger honoring the configured
// verbosity.
type Environment struct {
	Config   *config.Config
	Provider *tracing.Provider
	Logger   *slog.Logger
}

type CommandDefinition interface {
	Synopsis() string
	Flags() *pflag.FlagSet
	Execute(ctx context.Context, env *Environment, args []string) error
}

func NewCommand(definition CommandDefinition) func() (cli.Command, error) {
	return func() (cli.Command, error) {
		return &command{definition}, nil
	}
}

type command struct {
	CommandDefinition
}

func (c *command) Help() string {
	sb := strings.Builder{}

	sb.WriteString(c.Synopsis())
	sb.WriteString("\n\n")

	sb.WriteString("Flags:\n\n")

	sb.WriteString(c.Flags().FlagUsagesWrapped(80))

	return sb.String()
}

// Run wires config, logging, and telemetry before any command logic; a
// failure in any of those exits non-zero without executing the command.
func (c *command) Run(args []string) int {
	ctx := withCancelSignals(context.Background())

	cfg, err := config.CreateConfig(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	var opts []sdktrace.TracerProviderOption
	if cfg.ArchivePath != "" {
		store, err := archive.Open(cfg.ArchivePath, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		opts = append(opts, sdktrace.WithBatcher(store))
	}

	provider, err := tracing.Configure(ctx, cfg.Tracing("loom", version.VersionNumber()), opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer func() {
		// drain even when ctx was cancelled
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := provider.Shutdown(sctx); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}()

	tr := provider.Tracer("loom")
	ctx, span := tr.Start(ctx, "main")
	defer span.End()

	flags := c.Flags()

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	env := &Environment{Config: cfg, Provider: provider, Logger: logger}

	if err := c.Execute(ctx, env, flags.Args()); err != nil {
		fmt.Fprintln(os.Stderr, tracing.Error(span, err).Error())
		return 1
	}

	tracing.Ok(span)
	return 0
}

func withCancelSignals(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-signals
		fmt.Printf("\nReceived %s, stopping\n", s)
		cancel()
	}()

	return ctx
}
