// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/machinery/lib/driver"
)

const credentialsColumns = "id, driver, label, data, sealed, created_at"

// AddCredentials inserts c and assigns c.ID. A zero CreatedAt is set
// from the store's clock. The values are sealed like job parameters.
func (s *Store) AddCredentials(ctx context.Context, c *driver.Credentials) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.clock.Now().UTC()
	}
	data, isSealed, err := s.seal("credentials", c.Values)
	if err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO credentials (driver, label, data, sealed, created_at) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{c.Driver, c.Label, data, isSealed, c.CreatedAt.UnixNano()}})
	if err != nil {
		return fmt.Errorf("inserting credentials: %w", err)
	}
	c.ID = conn.LastInsertRowID()
	return nil
}

// LoadCredentials returns the saved credentials with the given ID or
// driver.ErrCredentialsNotFound.
func (s *Store) LoadCredentials(ctx context.Context, id int64) (*driver.Credentials, error) {
	found, err := s.queryCredentials(ctx, "SELECT "+credentialsColumns+" FROM credentials WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("credentials %d: %w", id, driver.ErrCredentialsNotFound)
	}
	return found[0], nil
}

// ListCredentials returns the saved credentials in ID order, only
// those of driverID when it is not empty.
func (s *Store) ListCredentials(ctx context.Context, driverID string) ([]*driver.Credentials, error) {
	if driverID == "" {
		return s.queryCredentials(ctx, "SELECT "+credentialsColumns+" FROM credentials ORDER BY id")
	}
	return s.queryCredentials(ctx, "SELECT "+credentialsColumns+" FROM credentials WHERE driver = ? ORDER BY id", driverID)
}

// RemoveCredentials deletes the saved credentials with the given ID.
// Jobs created from them keep their own copy of the values.
func (s *Store) RemoveCredentials(ctx context.Context, id int64) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `DELETE FROM credentials WHERE id = ?`, &sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("deleting credentials %d: %w", id, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("credentials %d: %w", id, driver.ErrCredentialsNotFound)
	}
	return nil
}

func (s *Store) queryCredentials(ctx context.Context, query string, args ...any) ([]*driver.Credentials, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var found []*driver.Credentials
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			c := &driver.Credentials{
				ID:        stmt.ColumnInt64(0),
				Driver:    stmt.ColumnText(1),
				Label:     stmt.ColumnText(2),
				CreatedAt: time.Unix(0, stmt.ColumnInt64(5)).UTC(),
			}
			raw := make([]byte, stmt.ColumnLen(3))
			stmt.ColumnBytes(3, raw)
			if err := s.open(raw, stmt.ColumnBool(4), &c.Values); err != nil {
				return fmt.Errorf("credentials %d: %w", c.ID, err)
			}
			found = append(found, c)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	return found, nil
}
