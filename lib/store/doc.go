// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists machinery's jobs, saved driver credentials
// and inventory snapshots in SQLite.
//
// [Store] implements both job.Store and inventory.SnapshotStore over
// one database, so the process running a job and the process watching
// it share state through the file. Job parameters and saved credential
// values are stored as JSON, sealed with age when a [sealed.Sealer] is
// configured. Snapshots are
// CBOR, compressed with the configured codec, and carry an absolute
// expiry time.
package store
