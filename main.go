package main

import (
	"fmt"
	"os"

	"loom/command"
	"loom/command/run"
	"loom/command/show"
	"loom/command/smoke"

	"github.com/hashicorp/cli"
)

func main() {

	commands := map[string]cli.CommandFactory{
		"run":     command.NewCommand(run.NewRunCommand()),
		"smoke":   command.NewCommand(smoke.NewSmokeCommand()),
		"show":    command.NewCommand(show.NewShowCommand()),
		"version": command.NewCommand(command.NewVersionCommand()),
	}

	cli := &cli.CLI{
		Name:                       "loom",
		Args:                       os.Args[1:],
		Commands:                   commands,
		Autocomplete:               true,
		AutocompleteNoDefaultFlags: false,
	}

	exitCode, err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
	}

	os.Exit(exitCode)
}
