// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobview is the terminal viewer for a provisioning job. It
// polls the job store and shows the output as it grows, with a status
// header, until the job records an exit code or the user quits.
//
// The model reads the job through a [Loader] rather than a store
// handle so that a viewer in one process can follow a job executed by
// another: every poll re-reads the persisted record.
package jobview
