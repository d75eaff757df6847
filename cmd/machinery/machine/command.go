// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package machine implements the "machinery machine" commands: listing
// and describing the docker-machine inventory, refreshing it, and
// removing machines.
package machine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/inventory"
)

// Command returns the "machine" command group.
func Command(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "machine",
		Summary: "Inspect and remove docker machines",
		Description: `Inspect and remove docker machines.

The inventory is the output of "docker-machine ls" together with
"inspect", "ip" and "url" for every machine. It is cached in the
database; commands that accept --cached read the cache only and fail
when it is empty or expired.`,
		Subcommands: []*cli.Command{
			listCommand(env),
			inspectCommand(env),
			ipCommand(env),
			urlCommand(env),
			refreshCommand(env),
			removeCommand(env),
		},
		Examples: []cli.Example{
			{
				Description: "List machines from the cache",
				Command:     "machinery machine list --cached",
			},
			{
				Description: "Show one machine's inspect document",
				Command:     "machinery machine inspect worker-1",
			},
		},
	}
}

// cacheParams is embedded by commands that can skip the refresh.
type cacheParams struct {
	Cached bool `json:"cached" flag:"cached" desc:"read the cached inventory instead of querying docker-machine"`
}

// oneName checks that args holds exactly the machine name.
func oneName(args []string, usage string) (string, error) {
	switch len(args) {
	case 0:
		return "", fmt.Errorf("machine name required\n\nUsage: %s", usage)
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
}

// lookup fetches one record and turns a miss into an error carrying
// suggestions from the cache.
func lookup(ctx context.Context, cache *inventory.Cache, name string, cached bool) (*inventory.Record, error) {
	record, err := cache.Get(ctx, name, cached)
	if err == nil {
		return record, nil
	}
	switch {
	case errors.Is(err, inventory.ErrNoSnapshot):
		return nil, fmt.Errorf("%w; run 'machinery machine refresh' or drop --cached", err)
	case errors.Is(err, inventory.ErrNotFound):
		if suggestions := cache.Suggest(ctx, name); len(suggestions) > 0 {
			return nil, fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
		}
	}
	return nil, err
}
