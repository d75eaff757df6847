// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/inventory"
	machinelib "github.com/bureau-foundation/machinery/lib/machine"
)

type listParams struct {
	cli.JSONOutput
	cacheParams
}

// machineEntry is one row of "machine list".
type machineEntry struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Driver string `json:"driver"`
	IP     string `json:"ip"`
	URL    string `json:"url"`
}

type listResult struct {
	Machines    []machineEntry `json:"machines"`
	RefreshedAt time.Time      `json:"refreshed_at"`
	Digest      string         `json:"digest"`

	// Changed is nil for --cached, and otherwise reports whether the
	// refresh produced a different inventory from the cached one.
	Changed *bool `json:"changed,omitempty"`
}

func listCommand(env *cli.Environment) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List docker machines",
		Description: `List every machine docker-machine knows about, with its state,
driver, IP address and Docker URL.

Without --cached the inventory is refreshed first, and the output notes
whether it changed since the previous refresh.`,
		Usage:  "machinery machine list [--cached] [--json]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			result, err := list(ctx, runtime.Inventory, params.Cached)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(env.Out(), result); done {
				return err
			}

			renderer := env.Renderer()
			rows := make([][]string, len(result.Machines))
			for i, entry := range result.Machines {
				rows[i] = []string{entry.Name, renderer.State(machinelib.State(entry.State)), entry.Driver, entry.IP, entry.URL}
			}
			out := env.Out()
			fmt.Fprint(out, renderer.Table([]string{"NAME", "STATE", "DRIVER", "IP", "URL"}, rows))

			note := fmt.Sprintf("%d machines as of %s", len(result.Machines), result.RefreshedAt.Format(time.RFC3339))
			if result.Changed != nil {
				if *result.Changed {
					note += ", changed since the previous refresh"
				} else {
					note += ", unchanged since the previous refresh"
				}
			}
			fmt.Fprintln(out, renderer.Faint(note))
			return nil
		},
	}
}

func list(ctx context.Context, cache *inventory.Cache, cached bool) (*listResult, error) {
	var previous *inventory.Snapshot
	if !cached {
		var err error
		previous, err = cache.Snapshot(ctx, true)
		if err != nil && !errors.Is(err, inventory.ErrNoSnapshot) {
			return nil, err
		}
	}

	snapshot, err := cache.Snapshot(ctx, cached)
	if errors.Is(err, inventory.ErrNoSnapshot) {
		return nil, fmt.Errorf("%w; run 'machinery machine refresh' or drop --cached", err)
	}
	if err != nil {
		return nil, err
	}

	result := &listResult{
		Machines:    make([]machineEntry, len(snapshot.Machines)),
		RefreshedAt: snapshot.RefreshedAt,
		Digest:      snapshot.Digest,
	}
	for i, record := range snapshot.Machines {
		result.Machines[i] = machineEntry{
			Name:   record.Name,
			State:  string(record.State),
			Driver: record.DriverName,
			IP:     record.IP,
			URL:    record.URL,
		}
	}
	if !cached {
		changed := previous == nil || previous.Digest != snapshot.Digest
		result.Changed = &changed
	}
	return result, nil
}
