// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/inventory"
	"github.com/bureau-foundation/machinery/lib/machine"
	"github.com/bureau-foundation/machinery/lib/process"
)

// Inventory is the part of the machine inventory cache the Manager
// uses. *inventory.Cache implements it.
type Inventory interface {
	Refresh(ctx context.Context) (*inventory.Snapshot, error)
	Snapshot(ctx context.Context, cached bool) (*inventory.Snapshot, error)
}

// OutputObserver is called with each output line after it has been
// saved.
type OutputObserver func(line string)

// ManagerConfig holds the dependencies of a Manager. All fields except
// Logger are required.
type ManagerConfig struct {
	Store     Store
	Client    *machine.Client
	Inventory Inventory
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Manager runs provisioning jobs and machine removals.
type Manager struct {
	store     Store
	client    *machine.Client
	inventory Inventory
	clock     clock.Clock
	logger    *slog.Logger
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("job: Store is required")
	}
	if cfg.Client == nil {
		return nil, errors.New("job: Client is required")
	}
	if cfg.Inventory == nil {
		return nil, errors.New("job: Inventory is required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("job: Clock is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		store:     cfg.Store,
		client:    cfg.Client,
		inventory: cfg.Inventory,
		clock:     cfg.Clock,
		logger:    logger,
	}, nil
}

// NewJob constructs an unsaved job. params is copied.
func (m *Manager) NewJob(name string, params Params) *Job {
	now := m.clock.Now()
	return &Job{
		Name:      name,
		Params:    params.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Create constructs and stores a job. It fails with ErrMachineExists
// if the cached inventory already has a machine named params.Name;
// with nothing cached no check is made.
func (m *Manager) Create(ctx context.Context, name string, params Params) (*Job, error) {
	if params.Name == "" {
		return nil, errors.New("job: machine name is required")
	}
	if snapshot, err := m.inventory.Snapshot(ctx, true); err == nil {
		if _, exists := snapshot.Find(params.Name); exists {
			return nil, fmt.Errorf("%w: %s", ErrMachineExists, params.Name)
		}
	} else if !errors.Is(err, inventory.ErrNoSnapshot) {
		return nil, fmt.Errorf("checking inventory: %w", err)
	}

	job := m.NewJob(name, params)
	if err := m.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("storing job: %w", err)
	}
	m.logger.Info("job created", "job_id", job.ID, "machine", params.Name)
	return job, nil
}

// Execute runs job to completion, saving after every output line. The
// job is first claimed through Store.Start, so a job already started
// elsewhere fails with ErrAlreadyStarted before anything runs. It
// reports whether the child exited zero. A non-zero exit is not an
// error. If the binary cannot be spawned the *process.SpawnError is
// returned, its text is appended to the job output, and the job stays
// started without an exit code.
func (m *Manager) Execute(ctx context.Context, job *Job, observers ...OutputObserver) (bool, error) {
	if job.Started {
		return false, fmt.Errorf("job %d: %w", job.ID, ErrAlreadyStarted)
	}
	logger := m.logger.With("job_id", job.ID, "machine", job.Params.Name)

	job.UpdatedAt = m.clock.Now()
	if err := m.store.Start(ctx, job); err != nil {
		return false, fmt.Errorf("starting job %d: %w", job.ID, err)
	}
	job.Started = true

	stream, err := m.client.Create(ctx, job.Params.CreateParams())
	if err != nil {
		var spawnErr *process.SpawnError
		if errors.As(err, &spawnErr) {
			job.Output += spawnErr.Error() + "\n"
			if saveErr := m.save(ctx, job); saveErr != nil {
				logger.Error("saving spawn failure", "error", saveErr)
			}
		}
		return false, err
	}
	defer stream.Close()
	logger.Info("job started", "pid", stream.Pid())

	exitCode, err := m.pump(ctx, job, stream, observers)
	m.refresh(ctx, logger)
	if err != nil {
		return false, err
	}

	logger.Info("job finished", "exit_code", exitCode)
	return exitCode == 0, nil
}

func (m *Manager) pump(ctx context.Context, job *Job, stream *process.Stream, observers []OutputObserver) (int, error) {
	for {
		event, err := stream.Next()
		if err == io.EOF {
			return 0, fmt.Errorf("job %d: output ended without an exit status", job.ID)
		}
		if err != nil {
			return 0, fmt.Errorf("job %d: %w", job.ID, err)
		}

		switch event.Kind {
		case process.EventLine:
			job.Output += event.Line
			if err := m.save(ctx, job); err != nil {
				return 0, err
			}
			for _, observe := range observers {
				observe(event.Line)
			}
		case process.EventExit:
			code := event.ExitCode
			job.ExitCode = &code
			if err := m.save(ctx, job); err != nil {
				return 0, err
			}
			return code, nil
		}
	}
}

func (m *Manager) save(ctx context.Context, job *Job) error {
	job.UpdatedAt = m.clock.Now()
	if err := m.store.Save(ctx, job); err != nil {
		return fmt.Errorf("saving job %d: %w", job.ID, err)
	}
	return nil
}

// refresh updates the inventory after a job or removal. It runs even
// when ctx has been cancelled, because the machine state may have
// changed regardless.
func (m *Manager) refresh(ctx context.Context, logger *slog.Logger) {
	if _, err := m.inventory.Refresh(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("inventory refresh failed", "error", err)
	}
}

// Removal is the outcome of a successful RemoveMachine.
type Removal struct {
	Name string

	// Forced is set when the plain removal failed and the forced retry
	// succeeded.
	Forced bool

	// Output is the combined output of the removal that succeeded.
	Output string
}

// RemovalError reports that both the plain and the forced removal
// failed. Output is the forced attempt's combined output.
type RemovalError struct {
	Name     string
	ExitCode int
	Output   string
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("removing machine %s failed (exit %d): %s", e.Name, e.ExitCode, e.Output)
}

// RemoveMachine runs "docker-machine rm name" and, if that exits
// non-zero, exactly one "docker-machine rm name -f". The inventory is
// refreshed afterwards whatever the outcome.
func (m *Manager) RemoveMachine(ctx context.Context, name string) (*Removal, error) {
	logger := m.logger.With("machine", name)
	defer m.refresh(ctx, logger)

	result, err := m.client.Remove(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if result.Success() {
		logger.Info("machine removed")
		return &Removal{Name: name, Output: result.Combined()}, nil
	}

	logger.Warn("removal failed, retrying with force", "exit_code", result.ExitCode)
	result, err = m.client.Remove(ctx, name, true)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, &RemovalError{Name: name, ExitCode: result.ExitCode, Output: result.Combined()}
	}
	logger.Warn("machine removed with force")
	return &Removal{Name: name, Forced: true, Output: result.Combined()}, nil
}
