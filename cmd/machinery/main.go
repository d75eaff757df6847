// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// machinery manages docker machines through the docker-machine CLI.
// See "machinery --help".
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/cmd/machinery/commands"
	"github.com/bureau-foundation/machinery/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Main(ctx, &cli.Environment{}, os.Args[1:])
}
