// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inventory maintains machinery's cached view of the machines
// docker-machine knows about.
//
// A refresh lists machines with "docker-machine ls", then runs inspect,
// ip and url for each one, and combines the results into a [Snapshot].
// The snapshot replaces the previous one wholesale under a single key
// of a [SnapshotStore], with a time-to-live (five minutes by default).
// Nothing is merged: a refresh that fails part way stores nothing and
// the previous snapshot stays in place until it expires.
//
// Reads come in two flavours selected by a cached flag. A cached read
// consults only the store and reports [ErrNoSnapshot] or [ErrNotFound]
// when the snapshot is missing or expired; it never refreshes behind
// the caller's back. An uncached read refreshes first.
//
// Refreshes through one [Cache] are serialized. Separate processes
// sharing a store each write complete snapshots, and the last write
// wins.
package inventory
