// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import (
	"bufio"
	"fmt"
	"strings"
)

// State is the operational state of a machine as reported by ls.
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateUnknown State = "unknown"
)

// headerToken starts the column header line of "docker-machine ls".
const headerToken = "NAME"

// Entry is one data row of "docker-machine ls".
type Entry struct {
	Name  string
	State State
}

// ParseList parses the table printed by "docker-machine ls". Lines
// before the header are discarded; docker-machine prints warnings
// there when a driver plugin misbehaves. Every line starting with the
// header token is skipped, not only the first. Output without a header
// line is a *ParseError.
func ParseList(output string) ([]Entry, error) {
	var entries []Entry
	seenHeader := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, headerToken) {
			seenHeader = true
			continue
		}
		if !seenHeader {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		rest := strings.TrimPrefix(strings.TrimSpace(line), name)
		entries = append(entries, Entry{Name: name, State: classifyState(rest)})
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Command: "ls", Err: err}
	}
	if !seenHeader {
		return nil, &ParseError{Command: "ls", Detail: fmt.Sprintf("no %s header in output %q", headerToken, truncate(output, 200))}
	}
	return entries, nil
}

func classifyState(columns string) State {
	switch {
	case strings.Contains(columns, "Running"):
		return StateRunning
	case strings.Contains(columns, "Stopped"):
		return StateStopped
	default:
		return StateUnknown
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
