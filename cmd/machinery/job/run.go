// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	joblib "github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/process"
)

type runParams struct {
	Detach bool `json:"detach" flag:"detach,d" desc:"run the job in a background process and return immediately"`
}

func runCommand(env *cli.Environment) *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "run",
		Summary: "Run a created job",
		Description: `Run "docker-machine create" for a job, printing its output as it
arrives. Every line is saved before it is printed. The exit status of
this command is the exit status of docker-machine.

With --detach the job runs in a new background process whose own
output goes to <root>/jobs/<id>.log; follow it with "job watch".

A job runs at most once.`,
		Usage:  "machinery job run <job-id> [--detach]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, err := parseID(args, "machinery job run <job-id>")
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
			return runJob(ctx, env, runtime, logger, loaded, params.Detach)
		},
	}
}

// runJob executes j in this process, or hands it to a background
// process when detach is set.
func runJob(ctx context.Context, env *cli.Environment, runtime *cli.Runtime, logger *slog.Logger, j *joblib.Job, detach bool) error {
	if j.Started {
		return fmt.Errorf("job %d: %w", j.ID, joblib.ErrAlreadyStarted)
	}
	logger = logger.With("job_id", j.ID, "machine", j.Params.Name)

	if detach {
		return detachJob(env, runtime, logger, j)
	}

	out := env.Out()
	succeeded, err := runtime.Manager.Execute(ctx, j, func(line string) {
		io.WriteString(out, line)
	})
	if err != nil {
		var spawnErr *process.SpawnError
		if errors.As(err, &spawnErr) {
			return fmt.Errorf("job %d: %w (check machine.binary in the configuration)", j.ID, err)
		}
		return err
	}

	renderer := env.Renderer()
	fmt.Fprintf(env.Err(), "job %d %s\n", j.ID, renderer.Status(j.Status()))
	if !succeeded {
		return &cli.ExitError{Code: *j.ExitCode}
	}
	return nil
}

func detachJob(env *cli.Environment, runtime *cli.Runtime, logger *slog.Logger, j *joblib.Job) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating own executable: %w", err)
	}
	argv := []string{executable}
	if env.ConfigPath != "" {
		argv = append(argv, "--config", env.ConfigPath)
	}
	if env.LogLevel != "" {
		argv = append(argv, "--log-level", env.LogLevel)
	}
	argv = append(argv, "job", "run", strconv.FormatInt(j.ID, 10))

	logDirectory := filepath.Join(runtime.Config.Paths.Root, "jobs")
	if err := os.MkdirAll(logDirectory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", logDirectory, err)
	}
	logPath := filepath.Join(logDirectory, fmt.Sprintf("%d.log", j.ID))

	pid, err := process.Detach(argv, logPath)
	if err != nil {
		return err
	}
	logger.Info("job detached", "pid", pid, "log", logPath)
	fmt.Fprintf(env.Out(), "job %d running in the background (pid %d)\n", j.ID, pid)
	fmt.Fprintf(env.Out(), "follow it with: machinery job watch %d\n", j.ID)
	return nil
}
