package command

import (
	"context"
	"fmt"

	"loom/command/version"

	"github.com/spf13/pflag"
)

type VersionCommand struct{}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Synopsis() string {
	return "Print the loom version"
}

func (c *VersionCommand) Flags() *pflag.FlagSet {
	return pflag.NewFlagSet("version", pflag.ContinueOnError)
}

func (c *VersionCommand) Execute(ctx context.Context, env *Environment, args []string) error {
	fmt.Println(version.VersionNumber())
	return nil
}
