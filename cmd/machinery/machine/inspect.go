// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/inventory"
)

type inspectParams struct {
	cli.JSONOutput
	cacheParams
}

// inspectResult is the --json form of "machine inspect". The inspect
// document is split the way the text output shows it.
type inspectResult struct {
	Name        string         `json:"name"`
	State       string         `json:"state"`
	IP          string         `json:"ip"`
	URL         string         `json:"url"`
	Driver      string         `json:"driver"`
	DriverLabel string         `json:"driver_label,omitempty"`
	Details     map[string]any `json:"details"`
	DriverInfo  map[string]any `json:"driver_info"`
	HostOptions map[string]any `json:"host_options"`
}

func newInspectResult(record *inventory.Record) inspectResult {
	result := inspectResult{
		Name:        record.Name,
		State:       string(record.State),
		IP:          record.IP,
		URL:         record.URL,
		Driver:      record.DriverName,
		Details:     record.Details(),
		DriverInfo:  record.DriverSection(),
		HostOptions: record.HostOptions(),
	}
	if record.Driver != nil {
		result.DriverLabel = record.Driver.Name
	}
	return result
}

func inspectCommand(env *cli.Environment) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show a machine's details",
		Description: `Show a machine's state, addresses and "docker-machine inspect"
document. The Driver and HostOptions sections of the document are
shown separately from the rest.`,
		Usage:  "machinery machine inspect <name> [--cached] [--json]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			name, err := oneName(args, "machinery machine inspect <name>")
			if err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			record, err := lookup(ctx, runtime.Inventory, name, params.Cached)
			if err != nil {
				return err
			}
			result := newInspectResult(record)
			if done, err := params.EmitJSON(env.Out(), result); done {
				return err
			}

			renderer := env.Renderer()
			driverLabel := result.Driver
			if result.DriverLabel != "" {
				driverLabel = fmt.Sprintf("%s (%s)", result.DriverLabel, result.Driver)
			}
			out := env.Out()
			fmt.Fprint(out, renderer.KeyValues([][2]string{
				{"Name", result.Name},
				{"State", renderer.State(record.State)},
				{"Driver", driverLabel},
				{"IP", result.IP},
				{"URL", result.URL},
			}))

			for _, section := range []struct {
				title string
				value map[string]any
			}{
				{"Details", result.Details},
				{"Driver", result.DriverInfo},
				{"Host options", result.HostOptions},
			} {
				if len(section.value) == 0 {
					continue
				}
				text, err := renderer.JSON(section.value)
				if err != nil {
					return fmt.Errorf("rendering %s: %w", section.title, err)
				}
				fmt.Fprintf(out, "\n%s\n%s", renderer.Bold(section.title), text)
			}
			return nil
		},
	}
}
