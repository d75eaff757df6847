// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
)

type showParams struct {
	cli.JSONOutput
}

func showCommand(env *cli.Environment) *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a job's command, status and output",
		Description: `Show a job: its machine, status, exit code, the command line it runs
(with driver credentials masked) and the output recorded so far.`,
		Usage:  "machinery job show <job-id> [--json]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, err := parseID(args, "machinery job show <job-id>")
			if err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			loaded, err := runtime.Store.Load(ctx, id)
			if err != nil {
				return err
			}
			entry := newJobEntry(env, runtime.Client.Binary(), loaded, true)
			if done, err := params.EmitJSON(env.Out(), entry); done {
				return err
			}

			renderer := env.Renderer()
			exit := "-"
			if entry.ExitCode != nil {
				exit = strconv.Itoa(*entry.ExitCode)
			}
			out := env.Out()
			fmt.Fprint(out, renderer.KeyValues([][2]string{
				{"Job", strconv.FormatInt(entry.ID, 10)},
				{"Name", entry.Name},
				{"Machine", entry.Machine},
				{"Status", renderer.Status(entry.Status)},
				{"Exit code", exit},
				{"Created", entry.CreatedAt.Format(time.RFC3339)},
				{"Updated", entry.UpdatedAt.Format(time.RFC3339)},
				{"Command", entry.Command},
			}))
			if entry.Output != "" {
				fmt.Fprintf(out, "\n%s\n%s\n", renderer.Bold("Output"), strings.TrimRight(entry.Output, "\n"))
			}
			return nil
		},
	}
}
