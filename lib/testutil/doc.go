// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for machinery packages.
//
// [WriteScript] and [ReadLines] support the fake docker-machine
// pattern: tests write a small shell script that answers the
// subcommands under test and appends each invocation to a log file,
// then read that log back to assert on the exact argv.
//
// [RequireReceive] wraps the select-with-timeout pattern so that
// individual tests do not need direct time.After calls when waiting on
// a goroutine.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no machinery-internal dependencies.
package testutil
