// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
)

func refreshCommand(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "refresh",
		Summary: "Re-read the inventory from docker-machine",
		Description: `Run "docker-machine ls" and describe every machine, replacing the
cached inventory. A failure leaves the previous cache in place.`,
		Usage: "machinery machine refresh",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			snapshot, err := runtime.Inventory.Refresh(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.Out(), "%d machines, digest %s\n", len(snapshot.Machines), snapshot.Digest)
			return nil
		},
	}
}
