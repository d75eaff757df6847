// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/machinery/lib/codec"
	"github.com/bureau-foundation/machinery/lib/compress"
	"github.com/bureau-foundation/machinery/lib/inventory"
)

// SetSnapshot replaces the snapshot under key. It expires ttl from
// now by the store's clock.
func (s *Store) SetSnapshot(ctx context.Context, key string, snapshot *inventory.Snapshot, ttl time.Duration) error {
	encoded, err := codec.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	data, tag, err := compress.Compress(encoded, s.compression)
	if err != nil {
		return fmt.Errorf("compressing snapshot: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO snapshots (key, compression, size, data, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		   compression = excluded.compression,
		   size = excluded.size,
		   data = excluded.data,
		   expires_at = excluded.expires_at`,
		&sqlitex.ExecOptions{Args: []any{
			key, int64(tag), len(encoded), data, s.clock.Now().Add(ttl).UnixNano(),
		}})
	if err != nil {
		return fmt.Errorf("storing snapshot %s: %w", key, err)
	}
	s.logger.Debug("snapshot stored",
		"key", key,
		"compression", tag.String(),
		"size", len(encoded),
		"stored_size", len(data),
	)
	return nil
}

// GetSnapshot returns the snapshot under key, or
// inventory.ErrNoSnapshot when it is absent or expired.
func (s *Store) GetSnapshot(ctx context.Context, key string) (*inventory.Snapshot, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var (
		found     bool
		tag       compress.Tag
		size      int
		data      []byte
		expiresAt int64
	)
	err = sqlitex.Execute(conn,
		`SELECT compression, size, data, expires_at FROM snapshots WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				tag = compress.Tag(stmt.ColumnInt64(0))
				size = stmt.ColumnInt(1)
				data = make([]byte, stmt.ColumnLen(2))
				stmt.ColumnBytes(2, data)
				expiresAt = stmt.ColumnInt64(3)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", key, err)
	}
	if !found {
		return nil, inventory.ErrNoSnapshot
	}
	if s.clock.Now().UnixNano() >= expiresAt {
		if err := sqlitex.Execute(conn, `DELETE FROM snapshots WHERE key = ? AND expires_at = ?`,
			&sqlitex.ExecOptions{Args: []any{key, expiresAt}}); err != nil {
			s.logger.Warn("deleting expired snapshot", "key", key, "error", err)
		}
		return nil, inventory.ErrNoSnapshot
	}

	decoded, err := compress.Decompress(data, tag, size)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", key, err)
	}
	var snapshot inventory.Snapshot
	if err := codec.Unmarshal(decoded, &snapshot); err != nil {
		if diagnosis, diagErr := codec.Diagnose(decoded); diagErr == nil {
			s.logger.Error("undecodable snapshot", "key", key, "cbor", diagnosis)
		}
		return nil, fmt.Errorf("decoding snapshot %s: %w", key, err)
	}
	return &snapshot, nil
}
