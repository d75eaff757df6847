// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/compress"
	"github.com/bureau-foundation/machinery/lib/sealed"
	"github.com/bureau-foundation/machinery/lib/sqlitepool"
)

// Config holds the parameters of Open.
type Config struct {
	// Path is the database file. Required.
	Path string

	// Clock stamps jobs and expires snapshots. Required.
	Clock clock.Clock

	// Sealer, when set, seals job parameters and saved credentials
	// on write. Sealed values cannot be loaded without one.
	Sealer *sealed.Sealer

	// Compression is the preferred snapshot codec.
	Compression compress.Tag

	Logger *slog.Logger
}

// Store is the SQLite-backed job, credentials and snapshot store.
type Store struct {
	pool        *sqlitepool.Pool
	clock       clock.Clock
	sealer      *sealed.Sealer
	compression compress.Tag
	logger      *slog.Logger
}

// Open opens or creates the database. The caller must Close the store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Clock == nil {
		return nil, errors.New("store: Clock is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
		Path:       cfg.Path,
		Migrations: migrations,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:        pool,
		clock:       cfg.Clock,
		sealer:      cfg.Sealer,
		compression: cfg.Compression,
		logger:      logger,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.pool.Close()
}
