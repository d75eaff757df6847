// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Detach starts argv in a new session, with stdin from /dev/null and
// stdout and stderr appended to logPath, and returns its pid without
// waiting for it. The child outlives the caller.
func Detach(argv []string, logPath string) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("process: empty argument vector")
	}

	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return 0, fmt.Errorf("process: opening log %s: %w", logPath, err)
	}
	defer logFile.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return 0, fmt.Errorf("process: opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	command := exec.Command(argv[0], argv[1:]...)
	command.Stdin = devNull
	command.Stdout = logFile
	command.Stderr = logFile
	command.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := command.Start(); err != nil {
		return 0, newSpawnError(argv[0], err)
	}
	pid := command.Process.Pid
	if err := command.Process.Release(); err != nil {
		return pid, fmt.Errorf("process: releasing %d: %w", pid, err)
	}
	return pid, nil
}
