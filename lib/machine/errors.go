// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

import "fmt"

// ParseError reports docker-machine output that could not be
// interpreted: an ls table without a header, or an inspect that failed
// or did not print a JSON document.
type ParseError struct {
	// Command is the docker-machine subcommand ("ls", "inspect").
	Command string

	// Machine is the machine the command targeted, if any.
	Machine string

	// Detail describes the problem when there is no underlying error.
	Detail string

	Err error
}

func (e *ParseError) Error() string {
	target := "docker-machine " + e.Command
	if e.Machine != "" {
		target += " " + e.Machine
	}
	switch {
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s: %v", target, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", target, e.Err)
	default:
		return fmt.Sprintf("%s: %s", target, e.Detail)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }
