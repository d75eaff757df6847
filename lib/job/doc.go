// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package job tracks "docker-machine create" provisioning jobs.
//
// A [Job] is created with its parameters, executed at most once, and
// ends with a recorded exit code. While the child runs, every output
// line is appended to the job and saved through the [Store] before the
// next line is read, so another process polling the store sees output
// as it is produced. After the child exits the [Manager] refreshes the
// machine inventory.
//
// The Manager also removes machines, retrying once with force when the
// plain removal fails.
package job
