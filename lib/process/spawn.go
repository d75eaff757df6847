// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

// SpawnReason classifies why a program could not be started.
type SpawnReason string

const (
	ReasonNotFound         SpawnReason = "not-found"
	ReasonPermissionDenied SpawnReason = "permission-denied"
	ReasonExecFormat       SpawnReason = "exec-format"
	ReasonOther            SpawnReason = "other"
)

// SpawnError reports that the binary could not be executed: it does
// not exist, is not executable, or is not a valid executable image.
type SpawnError struct {
	Binary string
	Reason SpawnReason
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot execute %s (%s): %v", e.Binary, e.Reason, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func newSpawnError(binary string, err error) *SpawnError {
	return &SpawnError{Binary: binary, Reason: classifySpawn(err), Err: err}
}

func classifySpawn(err error) SpawnReason {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, unix.ENOENT):
		return ReasonNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ReasonPermissionDenied
	case errors.Is(err, unix.ENOEXEC):
		return ReasonExecFormat
	default:
		return ReasonOther
	}
}
