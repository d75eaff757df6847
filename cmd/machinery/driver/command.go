// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package driver implements the "machinery driver" commands, which
// browse the catalogue of docker-machine drivers and their options and
// manage saved driver credentials.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/machinery/cmd/machinery/cli"
	driverlib "github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// Command returns the "driver" command group.
func Command(env *cli.Environment) *cli.Command {
	return &cli.Command{
		Name:    "driver",
		Summary: "Browse the docker-machine driver catalogue and saved credentials",
		Subcommands: []*cli.Command{
			listCommand(env),
			showCommand(env),
			credentialsCommand(env),
		},
	}
}

type listParams struct {
	cli.JSONOutput
	Category string `json:"category" flag:"category" desc:"only drivers in this category" choices:"cloud,local"`
}

type driverEntry struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category driverlib.Category `json:"category"`
}

func listCommand(env *cli.Environment) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List drivers",
		Usage:   "machinery driver list [--category cloud|local] [--json]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			registry := env.Drivers()
			specs := registry.All()
			if params.Category != "" {
				specs = registry.ByCategory(driverlib.Category(params.Category))
			}

			entries := make([]driverEntry, len(specs))
			for i, spec := range specs {
				entries[i] = driverEntry{ID: spec.ID, Name: spec.Name, Category: spec.Category}
			}
			if done, err := params.EmitJSON(env.Out(), entries); done {
				return err
			}

			rows := make([][]string, len(entries))
			for i, entry := range entries {
				rows[i] = []string{entry.ID, entry.Name, string(entry.Category)}
			}
			fmt.Fprint(env.Out(), env.Renderer().Table([]string{"ID", "NAME", "CATEGORY"}, rows))
			return nil
		},
	}
}

type showParams struct {
	cli.JSONOutput
}

func showCommand(env *cli.Environment) *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a driver's credentials, settings and flags",
		Usage:   "machinery driver show <id> [--json]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one driver id required\n\nUsage: machinery driver show <id>")
			}

			spec, err := lookup(env, args[0])
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(env.Out(), spec); done {
				return err
			}

			renderer := env.Renderer()
			out := env.Out()
			fmt.Fprint(out, renderer.KeyValues([][2]string{
				{"ID", spec.ID},
				{"Name", spec.Name},
				{"Category", string(spec.Category)},
			}))
			for _, group := range []struct {
				title  string
				fields []driverlib.Field
			}{
				{"Credentials", spec.Credentials},
				{"Settings", spec.Settings},
			} {
				if len(group.fields) == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", renderer.Bold(group.title))
				fmt.Fprint(out, renderer.Table([]string{"FLAG", "TYPE", "REQUIRED", "DEFAULT", "HELP"}, fieldRows(group.fields)))
			}
			if spec.Description != "" {
				fmt.Fprintf(out, "\n%s", renderer.Markdown(spec.Description))
			}
			return nil
		},
	}
}

func fieldRows(fields []driverlib.Field) [][]string {
	rows := make([][]string, len(fields))
	for i, field := range fields {
		required := ""
		if field.Required {
			required = "yes"
		}
		defaultValue := ""
		if field.Default != nil {
			defaultValue = fmt.Sprint(field.Default)
		}
		help := field.Help
		if len(field.Choices) > 0 {
			values := make([]string, len(field.Choices))
			for j, choice := range field.Choices {
				values[j] = choice.Value
			}
			help = strings.TrimSpace(help + " (one of " + strings.Join(values, ", ") + ")")
		}
		rows[i] = []string{machine.FlagName(field.Key), string(field.Type), required, defaultValue, help}
	}
	return rows
}

// lookup returns the driver with the given id, or an error with
// suggestions.
func lookup(env *cli.Environment, id string) (*driverlib.Spec, error) {
	registry := env.Drivers()
	spec, ok := registry.Lookup(id)
	if ok {
		return spec, nil
	}
	if suggestions := registry.Suggest(id); len(suggestions) > 0 {
		return nil, fmt.Errorf("unknown driver %q (did you mean %s?)", id, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("unknown driver %q", id)
}
