// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package job implements the "machinery job" commands, which create,
// run and follow docker-machine provisioning jobs.
package job

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/driver"
	joblib "github.com/bureau-foundation/machinery/lib/job"
)

// Command returns the "job" command group.
func Command(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "job",
		Summary: "Create and run provisioning jobs",
		Description: `Create and run provisioning jobs.

A job is one "docker-machine create" invocation. Its parameters are
stored when it is created; running it records every output line as it
arrives and the exit status at the end, so "job show" and "job watch"
can follow a job running in another process.`,
		Subcommands: []*cli.Command{
			createCommand(env),
			runCommand(env),
			showCommand(env),
			listCommand(env),
			watchCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "Create and run a VirtualBox machine",
				Command:     "machinery job create dev --driver virtualbox --params dev.jsonc --run",
			},
			{
				Description: "Run job 4 in the background and follow it",
				Command:     "machinery job run 4 --detach && machinery job watch 4",
			},
		},
	}
}

func parseID(args []string, usage string) (int64, error) {
	switch len(args) {
	case 0:
		return 0, fmt.Errorf("job id required\n\nUsage: %s", usage)
	case 1:
	default:
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", args[0])
	}
	return id, nil
}

// credentialMask returns the predicate CommandLine uses to hide
// secrets. For a driver missing from the catalogue every driver option
// except the driver selection is hidden.
func credentialMask(registry *driver.Registry, params joblib.Params) func(string) bool {
	if value, ok := params.Driver.Get(driver.DriverKey); ok {
		if id, ok := value.(string); ok {
			if spec, ok := registry.Lookup(id); ok {
				return spec.IsCredential
			}
		}
	}
	return func(key string) bool { return key != driver.DriverKey }
}

// jobEntry is the --json form of a job. Params are omitted: they
// carry credentials. Command is the masked command line.
type jobEntry struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Machine   string        `json:"machine"`
	Status    joblib.Status `json:"status"`
	ExitCode  *int          `json:"exit_code"`
	Command   string        `json:"command"`
	Output    string        `json:"output,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func newJobEntry(env *cli.Environment, binary string, j *joblib.Job, withOutput bool) jobEntry {
	entry := jobEntry{
		ID:        j.ID,
		Name:      j.Name,
		Machine:   j.Params.Name,
		Status:    j.Status(),
		ExitCode:  j.ExitCode,
		Command:   j.CommandLine(binary, credentialMask(env.Drivers(), j.Params)),
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if withOutput {
		entry.Output = j.Output
	}
	return entry
}
