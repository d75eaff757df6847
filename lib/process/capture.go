// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is the outcome of a captured run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the program exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Combined returns stdout followed by stderr.
func (r Result) Combined() string { return r.Stdout + r.Stderr }

// Capture runs argv to completion and collects its output. A non-zero
// exit is reported in Result.ExitCode with a nil error.
func Capture(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("process: empty argument vector")
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	setProcessGroup(command)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Start(); err != nil {
		return Result{}, newSpawnError(argv[0], err)
	}

	err := command.Wait()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("process: %s: %w", argv[0], ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("process: waiting for %s: %w", argv[0], err)
}
