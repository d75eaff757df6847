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

func ipCommand(env *cli.Environment) *cli.Command {
	return addressCommand(env, "ip", "Print a machine's IP address",
		func(record *inventory.Record) string { return record.IP })
}

func urlCommand(env *cli.Environment) *cli.Command {
	return addressCommand(env, "url", "Print a machine's Docker URL",
		func(record *inventory.Record) string { return record.URL })
}

// addressCommand prints one address field of a record. An empty
// address (a stopped machine) prints nothing and exits 1.
func addressCommand(env *cli.Environment, name, summary string, field func(*inventory.Record) string) *cli.Command {
	var params cacheParams
	usage := fmt.Sprintf("machinery machine %s <name> [--cached]", name)

	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			machineName, err := oneName(args, usage)
			if err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			record, err := lookup(ctx, runtime.Inventory, machineName, params.Cached)
			if err != nil {
				return err
			}
			value := field(record)
			if value == "" {
				logger.Info("machine has no address", "machine", machineName, "state", record.State)
				return &cli.ExitError{Code: 1}
			}
			fmt.Fprintln(env.Out(), value)
			return nil
		},
	}
}
