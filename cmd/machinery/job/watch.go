// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	joblib "github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/jobview"
)

type watchParams struct {
	Interval time.Duration `json:"interval" flag:"interval" desc:"how often to re-read the job" default:"500ms"`
	Exit     bool          `json:"exit"     flag:"exit"     desc:"quit as soon as the job finishes"`
}

func watchCommand(env *cli.Environment) *cli.Command {
	var params watchParams

	return &cli.Command{
		Name:    "watch",
		Summary: "Follow a job's output in a full-screen viewer",
		Description: `Open a full-screen viewer on a job. The job is re-read from the
database every --interval, so this follows jobs run by other
processes ("job run --detach"). Press q to quit.`,
		Usage:  "machinery job watch <job-id> [--interval 500ms] [--exit]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, err := parseID(args, "machinery job watch <job-id>")
			if err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			// Fail before taking over the screen.
			if _, err := runtime.Store.Load(ctx, id); err != nil {
				return err
			}

			model := jobview.NewModel(func(ctx context.Context) (*joblib.Job, error) {
				return runtime.Store.Load(ctx, id)
			}, params.Interval)
			model.ExitOnFinish = params.Exit

			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			final, err := program.Run()
			if err != nil {
				return err
			}

			finished, ok := final.(jobview.Model)
			if !ok {
				return nil
			}
			if err := finished.Err(); err != nil {
				return err
			}
			if watched := finished.Job(); watched != nil {
				fmt.Fprintf(env.Out(), "job %d %s\n", watched.ID, env.Renderer().Status(watched.Status()))
			}
			return nil
		},
	}
}
