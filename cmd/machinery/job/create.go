// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	"github.com/bureau-foundation/machinery/lib/driver"
	joblib "github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/machine"
)

type createParams struct {
	cli.JSONOutput
	Driver      string `json:"driver"      flag:"driver"      desc:"docker-machine driver id (see 'machinery driver list'); defaults to the driver of --credentials"`
	Credentials string `json:"credentials" flag:"credentials" desc:"ID of saved credentials to use (see 'machinery driver credentials list')"`
	ParamsFile  string `json:"params"      flag:"params"      desc:"JSONC file with \"credentials\" and \"settings\" objects"`

	Swarm          bool   `json:"swarm"           flag:"swarm"           desc:"configure the machine with Swarm"`
	SwarmMaster    bool   `json:"swarm_master"    flag:"swarm-master"    desc:"configure the machine to be a Swarm master"`
	SwarmDiscovery string `json:"swarm_discovery" flag:"swarm-discovery" desc:"discovery service to use with Swarm"`
	SwarmHost      string `json:"swarm_host"      flag:"swarm-host"      desc:"ip/socket to listen on for the Swarm master"`
	SwarmAddr      string `json:"swarm_addr"      flag:"swarm-addr"      desc:"address to advertise for Swarm (default: the machine IP)"`

	Run    bool `json:"run"    flag:"run"    desc:"run the job immediately"`
	Detach bool `json:"detach" flag:"detach" desc:"with --run, run the job in the background"`
}

// paramsDocument is the --params file.
type paramsDocument struct {
	Credentials machine.Options `json:"credentials"`
	Settings    machine.Options `json:"settings"`
}

func createCommand(env *cli.Environment) *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a provisioning job",
		Description: `Create a job that will run "docker-machine create <machine-name>".

The driver's credentials and settings are read from a JSONC file
(comments and trailing commas allowed):

    {
      // Sent as --digitalocean-access-token
      "credentials": {"digitalocean_access_token": "..."},
      "settings": {"digitalocean_region": "ams2"},
    }

With --credentials, the saved credentials of that ID are used and the
file only needs settings; credentials in the file override saved ones
key by key. Settings missing from the file take the driver's catalogue
defaults.
Values are validated against the catalogue, and file-typed values
(such as an Azure subscription certificate) are copied into the uploads
directory. The machine name must not already be in the cached
inventory.`,
		Usage:  "machinery job create <machine-name> (--driver <id> | --credentials <id>) [--params <file.jsonc>] [--swarm ...] [--run [--detach]] [--json]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one machine name required\n\nUsage: machinery job create <machine-name> --driver <id>")
			}
			machineName := args[0]
			if params.Driver == "" && params.Credentials == "" {
				return fmt.Errorf("--driver or --credentials is required")
			}
			if params.Detach && !params.Run {
				return fmt.Errorf("--detach requires --run")
			}
			var credentialsID int64
			if params.Credentials != "" {
				id, err := strconv.ParseInt(params.Credentials, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid --credentials %q: expected a saved credentials ID", params.Credentials)
				}
				credentialsID = id
			}

			var document paramsDocument
			if params.ParamsFile != "" {
				var err error
				document, err = readParamsFile(params.ParamsFile)
				if err != nil {
					return err
				}
			}

			runtime, err := env.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			driverID := params.Driver
			if credentialsID != 0 {
				saved, err := runtime.Store.LoadCredentials(ctx, credentialsID)
				if err != nil {
					return err
				}
				if driverID == "" {
					driverID = saved.Driver
				} else if driverID != saved.Driver {
					return fmt.Errorf("credentials %d are for driver %s, not %s", saved.ID, saved.Driver, driverID)
				}
				document.Credentials = saved.Values.Merge(document.Credentials)
			}

			registry := env.Drivers()
			spec, ok := registry.Lookup(driverID)
			if !ok {
				if suggestions := registry.Suggest(driverID); len(suggestions) > 0 {
					return fmt.Errorf("unknown driver %q (did you mean %s?)", driverID, strings.Join(suggestions, ", "))
				}
				return fmt.Errorf("unknown driver %q", driverID)
			}

			jobParams, err := buildParams(machineName, spec, document, params)
			if err != nil {
				return err
			}
			staging := filepath.Join(runtime.Config.Paths.Uploads, machineName)
			if err := cli.StageFiles(staging, spec, &jobParams.Driver, &jobParams.Settings); err != nil {
				return err
			}

			created, err := runtime.Manager.Create(ctx, machineName, jobParams)
			if err != nil {
				return err
			}
			logger.Info("job created", "job_id", created.ID, "machine", machineName, "driver", spec.ID, "credentials_id", credentialsID)

			if params.Run {
				return runJob(ctx, env, runtime, logger, created, params.Detach)
			}
			if done, err := params.EmitJSON(env.Out(), newJobEntry(env, runtime.Client.Binary(), created, false)); done {
				return err
			}
			fmt.Fprintf(env.Out(), "created job %d for machine %s\n", created.ID, machineName)
			fmt.Fprintf(env.Out(), "run it with: machinery job run %d\n", created.ID)
			return nil
		},
	}
}

func readParamsFile(path string) (paramsDocument, error) {
	var document paramsDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return document, fmt.Errorf("reading params: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&document); err != nil {
		return document, fmt.Errorf("parsing params %s: %w", path, err)
	}
	return document, nil
}

// buildParams assembles and validates the job parameters: the swarm
// flags, the driver selection plus credentials, and the settings over
// the catalogue defaults.
func buildParams(machineName string, spec *driver.Spec, document paramsDocument, params createParams) (joblib.Params, error) {
	settings := spec.Defaults().Merge(document.Settings)
	if err := spec.Validate(document.Credentials, settings); err != nil {
		return joblib.Params{}, err
	}
	return joblib.Params{
		Name: machineName,
		Swarm: machine.Options{
			{Key: machine.SwarmEnableKey, Value: params.Swarm},
			{Key: "swarm_master", Value: params.SwarmMaster},
			{Key: "swarm_discovery", Value: params.SwarmDiscovery},
			{Key: "swarm_host", Value: params.SwarmHost},
			{Key: "swarm_addr", Value: params.SwarmAddr},
		},
		Driver:   spec.DriverOptions(document.Credentials),
		Settings: settings,
	}, nil
}
