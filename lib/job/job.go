// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"errors"
	"strings"
	"time"

	"github.com/bureau-foundation/machinery/lib/machine"
)

var (
	// ErrNotFound is returned by Store.Load for an unknown job ID.
	ErrNotFound = errors.New("job not found")

	// ErrAlreadyStarted is returned when executing a job a second time.
	ErrAlreadyStarted = errors.New("job already started")

	// ErrMachineExists is returned when creating a job for a machine
	// name present in the cached inventory.
	ErrMachineExists = errors.New("machine already exists")
)

// Params are the inputs of a provisioning job.
type Params struct {
	// Name is the machine to create.
	Name string `json:"name"`

	Swarm    machine.Options `json:"swarm"`
	Driver   machine.Options `json:"driver"`
	Settings machine.Options `json:"settings"`
}

// CreateParams converts p for machine.CreateCommand.
func (p Params) CreateParams() machine.CreateParams {
	return machine.CreateParams{
		Name:     p.Name,
		Swarm:    p.Swarm,
		Driver:   p.Driver,
		Settings: p.Settings,
	}
}

// Clone returns a copy of p sharing no option slices with it.
func (p Params) Clone() Params {
	return Params{
		Name:     p.Name,
		Swarm:    p.Swarm.Clone(),
		Driver:   p.Driver.Clone(),
		Settings: p.Settings.Clone(),
	}
}

// Status summarizes where a job is in its lifecycle.
type Status string

const (
	StatusCreated   Status = "created"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is one provisioning run.
type Job struct {
	ID     int64
	Name   string
	Params Params

	// Output is the merged stdout and stderr of the child, one line at
	// a time in the order produced. It only grows.
	Output string

	// Started is set before the child is spawned.
	Started bool

	// ExitCode is nil until the child exits.
	ExitCode *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the job's status from Started and ExitCode.
func (j *Job) Status() Status {
	switch {
	case j.ExitCode != nil && *j.ExitCode == 0:
		return StatusSucceeded
	case j.ExitCode != nil:
		return StatusFailed
	case j.Started:
		return StatusRunning
	default:
		return StatusCreated
	}
}

// Terminal reports whether the exit code has been recorded.
func (j *Job) Terminal() bool {
	return j.ExitCode != nil
}

// Clone returns a deep copy of j.
func (j *Job) Clone() *Job {
	clone := *j
	clone.Params = j.Params.Clone()
	if j.ExitCode != nil {
		code := *j.ExitCode
		clone.ExitCode = &code
	}
	return &clone
}

// Argv returns the command the job runs.
func (j *Job) Argv(binary string) []string {
	return machine.CreateCommand(binary, j.Params.CreateParams())
}

// MaskedValue replaces secret option values in CommandLine.
const MaskedValue = "********"

// CommandLine returns the job's command for display. Driver options
// for which secret reports true have their values replaced with
// MaskedValue. A nil secret masks nothing.
func (j *Job) CommandLine(binary string, secret func(key string) bool) string {
	params := j.Params.Clone()
	if secret != nil {
		for i, option := range params.Driver {
			if secret(option.Key) && option.Value != nil && option.Value != "" {
				params.Driver[i].Value = MaskedValue
			}
		}
	}
	return strings.Join(machine.CreateCommand(binary, params.CreateParams()), " ")
}
