// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// Fatal exits the program because of err. An error in the chain with
// an ExitCode() int method sets the status and nothing is printed;
// any other error is written to stderr and the status is 1.
func Fatal(err error) {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		os.Exit(coded.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "machinery: %v\n", err)
	os.Exit(1)
}
