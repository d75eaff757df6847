// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the machinery command tree and parses the
// global flags that precede the command name.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	drivercmd "github.com/bureau-foundation/machinery/cmd/machinery/driver"
	jobcmd "github.com/bureau-foundation/machinery/cmd/machinery/job"
	keycmd "github.com/bureau-foundation/machinery/cmd/machinery/key"
	machinecmd "github.com/bureau-foundation/machinery/cmd/machinery/machine"
	"github.com/bureau-foundation/machinery/lib/version"
)

// Root builds the command tree around env.
func Root(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name: "machinery",
		Description: `machinery: docker-machine lifecycle manager.

Provision docker hosts through docker-machine as recorded, resumable
jobs, keep a cached inventory of the machines it manages, and remove
them again.`,
		Usage:      "machinery [--config <file>] [--log-level <level>] <command> [flags]",
		HelpOutput: env.Err(),
		Subcommands: []*cli.Command{
			machinecmd.Command(env),
			jobcmd.Command(env),
			drivercmd.Command(env),
			keycmd.Command(env),
			versionCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Refresh and list the inventory",
				Command:     "machinery machine list",
			},
			{
				Description: "See which options a driver takes",
				Command:     "machinery driver show digitalocean",
			},
			{
				Description: "Provision a machine",
				Command:     "machinery job create web-1 --driver digitalocean --params web.jsonc --run",
			},
		},
	}
}

type versionParams struct {
	cli.JSONOutput
	Short bool `json:"short" flag:"short" desc:"print only the version number"`
}

type versionResult struct {
	Version string `json:"version"`
	Build   string `json:"build"`
}

func versionCommand(env *cli.Environment) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "machinery version [--short] [--json]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
			result := versionResult{Version: version.Short(), Build: version.Info()}
			if done, err := params.EmitJSON(env.Out(), result); done {
				return err
			}
			if params.Short {
				fmt.Fprintln(env.Out(), result.Version)
				return nil
			}
			fmt.Fprintf(env.Out(), "machinery %s\n", version.Full())
			return nil
		},
	}
}

// Main parses the global flags in args into env, builds the logger and
// runs the command named by the remaining arguments.
func Main(ctx context.Context, env *cli.Environment, args []string) error {
	flagSet := pflag.NewFlagSet("machinery", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	env.AddFlags(flagSet)

	root := Root(env)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(env.Err(), root, flagSet)
			return nil
		}
		return fmt.Errorf("%w\n\nRun 'machinery --help' for usage.", err)
	}
	if flagSet.NArg() == 0 {
		printHelp(env.Err(), root, flagSet)
		return fmt.Errorf("command required")
	}

	logger, err := env.Logger()
	if err != nil {
		return err
	}
	return root.Execute(ctx, flagSet.Args(), logger)
}

func printHelp(w io.Writer, root *cli.Command, global *pflag.FlagSet) {
	root.PrintHelp(w)
	fmt.Fprintf(w, "\nGlobal flags:\n%s", global.FlagUsages())
}
