// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/job"
)

func removeCommand(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Summary: "Remove a machine",
		Description: `Run "docker-machine rm <name>". If that fails, it is retried once
with -f, and the output says so. The inventory is refreshed afterwards
either way.`,
		Usage: "machinery machine rm <name>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			name, err := oneName(args, "machinery machine rm <name>")
			if err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			removal, err := runtime.Manager.RemoveMachine(ctx, name)
			var removalErr *job.RemovalError
			if errors.As(err, &removalErr) {
				fmt.Fprintf(env.Out(), "removing %s failed even with force (exit %d)\n", name, removalErr.ExitCode)
				writeOutput(env, removalErr.Output)
				return &cli.ExitError{Code: 1}
			}
			if err != nil {
				return err
			}

			if removal.Forced {
				fmt.Fprintf(env.Out(), "removed %s, but had to use force\n", name)
				writeOutput(env, removal.Output)
				return nil
			}
			fmt.Fprintf(env.Out(), "removed %s\n", name)
			return nil
		},
	}
}

func writeOutput(env *cli.Environment, output string) {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	fmt.Fprintln(env.Out(), env.Renderer().Faint(output))
}
