// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process runs external programs on behalf of machinery.
//
// [Start] spawns a child and returns a [Stream] whose [Stream.Next]
// yields the child's output one line at a time while the child is
// still running, followed by exactly one exit event carrying the exit
// status. [Capture] runs a child to completion and returns its stdout,
// stderr and exit code, for short commands whose output is parsed as a
// whole.
//
// A non-zero exit status is never an error at this layer: it is data,
// reported through [Event].ExitCode or [Result].ExitCode. Errors are
// reserved for failures to run the program at all ([SpawnError]) and
// for I/O or context failures while it runs.
//
// Nothing here imposes a timeout. The context passed to Start or
// Capture is the only cancellation mechanism.
//
// [Fatal] turns the error returned by cmd/machinery's command tree into
// a process exit status.
package process
