// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens machinery's SQLite database.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool with fixed pragmas
// and a small forward-only migration runner. Callers [Pool.Take] a
// connection, run SQL with sqlitex.Execute, and [Pool.Put] it back.
// A connection is used by one goroutine at a time.
//
// # Pragmas
//
// Every connection is prepared with:
//
//   - journal_mode=WAL, so a "job watch" process reads while a
//     "job run" process writes
//   - synchronous=NORMAL
//   - busy_timeout=5000, to wait for the writer instead of failing
//     with SQLITE_BUSY
//   - foreign_keys=ON
//   - temp_store=MEMORY
//
// # Migrations
//
// [Config.Migrations] is an ordered list of SQL scripts. The database's
// user_version records how many have been applied; Open applies the
// rest in one immediate transaction. Scripts are never edited once
// released, only appended.
//
//	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
//	    Path:       cfg.Paths.Database,
//	    Migrations: []string{schemaV1},
//	    Logger:     logger,
//	})
package sqlitepool
