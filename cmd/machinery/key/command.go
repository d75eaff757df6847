// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package key implements "machinery key", which manages the age
// identity that seals job parameters at rest.
package key

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/sealed"
)

// Command returns the "key" command group.
func Command(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "key",
		Summary: "Manage the job sealing identity",
		Description: `Manage the age identity used to seal job parameters.

Job parameters carry cloud credentials. When the identity file named by
sealing.identity_file exists, parameters are encrypted to it (and to
any sealing.recipients) before they are written to the database. Jobs
created before the identity existed stay readable.`,
		Subcommands: []*cli.Command{generateCommand(env)},
	}
}

type generateParams struct {
	cli.JSONOutput
	Out string `json:"out" flag:"out,o" desc:"identity file to write (default sealing.identity_file)"`
}

type generateResult struct {
	IdentityFile string `json:"identity_file"`
	PublicKey    string `json:"public_key"`
}

func generateCommand(env *cli.Environment) *cli.Command {
	var params generateParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Generate a new sealing identity",
		Description: `Generate an age X25519 identity and write it, mode 0600, to the
configured identity file or --out. An existing file is never
overwritten. The public key is printed; add it to other installations'
sealing.recipients to let them share sealed jobs.`,
		Usage:  "machinery key generate [--out <path>] [--json]",
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			path := params.Out
			if path == "" {
				cfg, err := env.Config()
				if err != nil {
					return err
				}
				path = cfg.Sealing.IdentityFile
			}
			if path == "" {
				return fmt.Errorf("no identity file configured; pass --out")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			if err := sealed.WriteIdentityFile(path, keypair, env.RuntimeClock().Now()); err != nil {
				return err
			}
			logger.Info("sealing identity written", "path", path)

			result := generateResult{IdentityFile: path, PublicKey: keypair.PublicKey}
			if done, err := params.EmitJSON(env.Out(), result); done {
				return err
			}
			fmt.Fprintf(env.Out(), "wrote %s\npublic key: %s\n", path, keypair.PublicKey)
			return nil
		},
	}
}
