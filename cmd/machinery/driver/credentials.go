// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	driverlib "github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
)

func credentialsCommand(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "credentials",
		Summary: "Manage saved driver credentials",
		Description: `Saved credentials hold a driver's credential values (API tokens,
account keys, certificates) so that jobs can refer to them by ID with
"machinery job create --credentials <id>" instead of repeating them in
every params file. They are sealed like job parameters when an age
identity is configured.`,
		Subcommands: []*cli.Command{
			credentialsAddCommand(env),
			credentialsListCommand(env),
			credentialsRemoveCommand(env),
		},
	}
}

type credentialsAddParams struct {
	cli.JSONOutput
	ParamsFile string `json:"params" flag:"params" desc:"JSONC file with the credential values as one object"`
	Label      string `json:"label"  flag:"label"  desc:"name shown by 'machinery driver credentials list'"`
}

// credentialsEntry is the listed form of saved credentials. Only the
// keys of the values are shown.
type credentialsEntry struct {
	ID        int64     `json:"id"`
	Driver    string    `json:"driver"`
	Label     string    `json:"label"`
	Fields    []string  `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
}

func newCredentialsEntry(c *driverlib.Credentials) credentialsEntry {
	return credentialsEntry{
		ID:        c.ID,
		Driver:    c.Driver,
		Label:     c.Label,
		Fields:    c.Values.Keys(),
		CreatedAt: c.CreatedAt,
	}
}

func credentialsAddCommand(env *cli.Environment) *cli.Command {
	var params credentialsAddParams

	return &cli.Command{
		Name:    "add",
		Summary: "Save credentials for a driver",
		Description: `Read the credential values from a JSONC file and save them:

    {
      // Sent as --digitalocean-access-token
      "digitalocean_access_token": "...",
    }

The values are validated against the driver's credential fields, and
file-typed values are copied into the uploads directory.`,
		Usage:  "machinery driver credentials add <driver> --params <file.jsonc> [--label <text>] [--json]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one driver id required\n\nUsage: machinery driver credentials add <driver> --params <file.jsonc>")
			}
			if params.ParamsFile == "" {
				return fmt.Errorf("--params is required")
			}
			spec, err := lookup(env, args[0])
			if err != nil {
				return err
			}
			values, err := readCredentialsFile(params.ParamsFile)
			if err != nil {
				return err
			}
			values = values.Without(driverlib.DriverKey)
			if err := spec.ValidateCredentials(values); err != nil {
				return err
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			if len(spec.FileFields()) > 0 {
				parent := credentialsUploads(runtime.Config.Paths.Uploads)
				if err := os.MkdirAll(parent, 0o700); err != nil {
					return err
				}
				staging, err := os.MkdirTemp(parent, spec.ID+"-")
				if err != nil {
					return err
				}
				if err := cli.StageFiles(staging, spec, &values); err != nil {
					return err
				}
			}

			saved := &driverlib.Credentials{Driver: spec.ID, Label: params.Label, Values: values}
			if err := runtime.Store.AddCredentials(ctx, saved); err != nil {
				return err
			}
			logger.Info("credentials saved", "credentials_id", saved.ID, "driver", spec.ID)

			if done, err := params.EmitJSON(env.Out(), newCredentialsEntry(saved)); done {
				return err
			}
			fmt.Fprintf(env.Out(), "saved credentials %d for driver %s\n", saved.ID, spec.ID)
			fmt.Fprintf(env.Out(), "use them with: machinery job create <machine-name> --credentials %d\n", saved.ID)
			return nil
		},
	}
}

type credentialsListParams struct {
	cli.JSONOutput
	Driver string `json:"driver" flag:"driver" desc:"only credentials for this driver"`
}

func credentialsListCommand(env *cli.Environment) *cli.Command {
	var params credentialsListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List saved credentials without their values",
		Usage:   "machinery driver credentials list [--driver <id>] [--json]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if params.Driver != "" {
				if _, err := lookup(env, params.Driver); err != nil {
					return err
				}
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			saved, err := runtime.Store.ListCredentials(ctx, params.Driver)
			if err != nil {
				return err
			}
			entries := make([]credentialsEntry, len(saved))
			for i, c := range saved {
				entries[i] = newCredentialsEntry(c)
			}
			if done, err := params.EmitJSON(env.Out(), entries); done {
				return err
			}

			rows := make([][]string, len(entries))
			for i, entry := range entries {
				flags := make([]string, len(entry.Fields))
				for j, key := range entry.Fields {
					flags[j] = machine.FlagName(key)
				}
				rows[i] = []string{
					strconv.FormatInt(entry.ID, 10),
					entry.Driver,
					entry.Label,
					strings.Join(flags, " "),
					entry.CreatedAt.Format(time.DateTime),
				}
			}
			fmt.Fprint(env.Out(), env.Renderer().Table([]string{"ID", "DRIVER", "LABEL", "FLAGS", "CREATED"}, rows))
			return nil
		},
	}
}

func credentialsRemoveCommand(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Summary: "Delete saved credentials",
		Description: `Delete saved credentials and their staged files. Jobs already
created from them keep their own copy of the values.`,
		Usage: "machinery driver credentials rm <id>",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one credentials ID required\n\nUsage: machinery driver credentials rm <id>")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid credentials ID %q", args[0])
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			saved, err := runtime.Store.LoadCredentials(ctx, id)
			if err != nil {
				return err
			}
			if err := runtime.Store.RemoveCredentials(ctx, id); err != nil {
				return err
			}
			removeStaged(logger, credentialsUploads(runtime.Config.Paths.Uploads), env.Drivers(), saved)
			logger.Info("credentials removed", "credentials_id", id, "driver", saved.Driver)

			fmt.Fprintf(env.Out(), "removed credentials %d\n", id)
			return nil
		},
	}
}

func credentialsUploads(uploads string) string {
	return filepath.Join(uploads, "credentials")
}

// removeStaged deletes the staging directories of saved's file-typed
// values. Paths outside parent were not staged by "add" and are kept.
func removeStaged(logger *slog.Logger, parent string, registry *driverlib.Registry, saved *driverlib.Credentials) {
	spec, ok := registry.Lookup(saved.Driver)
	if !ok {
		return
	}
	for _, key := range spec.FileFields() {
		value, _ := saved.Values.Get(key)
		path, ok := value.(string)
		if !ok || !strings.HasPrefix(path, parent+string(filepath.Separator)) {
			continue
		}
		if err := os.RemoveAll(filepath.Dir(path)); err != nil {
			logger.Warn("removing staged credential file", "path", path, "error", err)
		}
	}
}

func readCredentialsFile(path string) (machine.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	var values machine.Options
	if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	return values, nil
}
