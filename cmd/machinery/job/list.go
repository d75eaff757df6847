// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
)

type listParams struct {
	cli.JSONOutput
}

func listCommand(env *cli.Environment) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List jobs, newest first",
		Usage:   "machinery job list [--json]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			jobs, err := runtime.Store.List(ctx)
			if err != nil {
				return err
			}
			entries := make([]jobEntry, len(jobs))
			for i, j := range jobs {
				entries[i] = newJobEntry(env, runtime.Client.Binary(), j, false)
			}
			if done, err := params.EmitJSON(env.Out(), entries); done {
				return err
			}

			renderer := env.Renderer()
			rows := make([][]string, len(entries))
			for i, entry := range entries {
				exit := ""
				if entry.ExitCode != nil {
					exit = strconv.Itoa(*entry.ExitCode)
				}
				rows[i] = []string{
					strconv.FormatInt(entry.ID, 10),
					entry.Machine,
					renderer.Status(entry.Status),
					exit,
					entry.CreatedAt.Format(time.DateTime),
				}
			}
			fmt.Fprint(env.Out(), renderer.Table([]string{"ID", "MACHINE", "STATUS", "EXIT", "CREATED"}, rows))
			return nil
		},
	}
}
