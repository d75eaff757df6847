// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/compress"
	"github.com/bureau-foundation/machinery/lib/config"
	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/inventory"
	"github.com/bureau-foundation/machinery/lib/job"
	"github.com/bureau-foundation/machinery/lib/machine"
	"github.com/bureau-foundation/machinery/lib/render"
	"github.com/bureau-foundation/machinery/lib/sealed"
	"github.com/bureau-foundation/machinery/lib/store"
)

// Environment is the state shared by every command of one invocation.
// The global flags fill ConfigPath, LogLevel, LogFormat and Color; the
// remaining fields default when nil.
type Environment struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Color      string

	Stdout io.Writer
	Stderr io.Writer
	Clock  clock.Clock

	// Registry is the driver catalogue. Defaults to driver.Default().
	Registry *driver.Registry

	config *config.Config
}

// AddFlags registers the global flags on flagSet.
func (e *Environment) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&e.ConfigPath, "config", "", "configuration file (default $MACHINERY_CONFIG, then built-in defaults)")
	flagSet.StringVar(&e.LogLevel, "log-level", "", "log level: debug, info, warn or error (overrides logging.level)")
	flagSet.StringVar(&e.LogFormat, "log-format", "", "log format: auto, text or json (overrides logging.format)")
	flagSet.StringVar(&e.Color, "color", "auto", "colour output: auto, always or never")
}

// Out returns the standard output writer.
func (e *Environment) Out() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

// Err returns the standard error writer.
func (e *Environment) Err() io.Writer {
	if e.Stderr == nil {
		return os.Stderr
	}
	return e.Stderr
}

// RuntimeClock returns Clock, or the real clock when it is nil.
func (e *Environment) RuntimeClock() clock.Clock {
	if e.Clock == nil {
		return clock.Real()
	}
	return e.Clock
}

// Drivers returns the driver catalogue.
func (e *Environment) Drivers() *driver.Registry {
	if e.Registry == nil {
		e.Registry = driver.Default()
	}
	return e.Registry
}

// Config loads and validates the configuration once per invocation:
// ConfigPath if set, else MACHINERY_CONFIG, else the defaults.
func (e *Environment) Config() (*config.Config, error) {
	if e.config != nil {
		return e.config, nil
	}
	var cfg *config.Config
	var err error
	if e.ConfigPath != "" {
		cfg, err = config.LoadFile(e.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	e.config = cfg
	return cfg, nil
}

// Logger builds the invocation logger on the standard error writer.
// The flags override the configured level and format.
func (e *Environment) Logger() (*slog.Logger, error) {
	level, format := e.LogLevel, e.LogFormat
	if level == "" || format == "" {
		cfg, err := e.Config()
		if err != nil {
			return nil, err
		}
		if level == "" {
			level = cfg.Logging.Level
		}
		if format == "" {
			format = cfg.Logging.Format
		}
	}
	return NewCommandLogger(e.Err(), level, format)
}

// Renderer returns a renderer for standard output, sized to the
// terminal when there is one.
func (e *Environment) Renderer() *render.Renderer {
	mode := render.ColorAuto
	switch e.Color {
	case "always":
		mode = render.ColorAlways
	case "never":
		mode = render.ColorNever
	}
	out := e.Out()
	width := 0
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		if columns, _, err := term.GetSize(int(file.Fd())); err == nil {
			width = columns
		}
	}
	return render.New(out, mode, width)
}

// Runtime is the set of services a command works against. Close it
// when done.
type Runtime struct {
	Config    *config.Config
	Store     *store.Store
	Client    *machine.Client
	Inventory *inventory.Cache
	Manager   *job.Manager
}

// Open creates the state directories, opens the database and wires the
// inventory cache and job manager to it.
func (e *Environment) Open(ctx context.Context, logger *slog.Logger) (*Runtime, error) {
	cfg, err := e.Config()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}

	var sealer *sealed.Sealer
	if cfg.SealingEnabled() {
		sealer, err = sealed.LoadSealer(cfg.Sealing.IdentityFile, cfg.Sealing.Recipients)
		if err != nil {
			return nil, err
		}
		logger.Debug("job parameters are sealed", "recipients", len(sealer.Recipients()))
	}

	compression, err := compress.ParseTag(cfg.Inventory.Compression)
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.InventoryTTL()
	if err != nil {
		return nil, err
	}

	jobStore, err := store.Open(ctx, store.Config{
		Path:        cfg.Paths.Database,
		Clock:       e.RuntimeClock(),
		Sealer:      sealer,
		Compression: compression,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	client := machine.NewClient(cfg.Machine.Binary, logger)
	cache, err := inventory.New(inventory.Config{
		Source:   client,
		Registry: e.Drivers(),
		Store:    jobStore,
		Clock:    e.RuntimeClock(),
		TTL:      ttl,
		Logger:   logger,
	})
	if err != nil {
		return nil, errors.Join(err, jobStore.Close())
	}
	manager, err := job.NewManager(job.ManagerConfig{
		Store:     jobStore,
		Client:    client,
		Inventory: cache,
		Clock:     e.RuntimeClock(),
		Logger:    logger,
	})
	if err != nil {
		return nil, errors.Join(err, jobStore.Close())
	}

	return &Runtime{
		Config:    cfg,
		Store:     jobStore,
		Client:    client,
		Inventory: cache,
		Manager:   manager,
	}, nil
}

// Close closes the database.
func (r *Runtime) Close() error {
	return r.Store.Close()
}
