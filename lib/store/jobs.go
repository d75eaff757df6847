// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/machinery/lib/job"
)

const jobColumns = "id, name, params, sealed, output, started, exit_code, created_at, updated_at"

// Create inserts j and assigns j.ID. The parameters are written only
// here; Save never changes them.
func (s *Store) Create(ctx context.Context, j *job.Job) error {
	params, isSealed, err := s.encodeParams(j.Params)
	if err != nil {
		return err
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO jobs (name, params, sealed, output, started, exit_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			j.Name, params, isSealed, j.Output, j.Started, exitCodeArg(j.ExitCode),
			j.CreatedAt.UnixNano(), j.UpdatedAt.UnixNano(),
		}})
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	j.ID = conn.LastInsertRowID()
	return nil
}

// Start claims j: the row's started flag goes from unset to set in a
// single conditional UPDATE. If no row changed, the job is either
// missing (job.ErrNotFound) or already started by someone else
// (job.ErrAlreadyStarted).
func (s *Store) Start(ctx context.Context, j *job.Job) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE jobs SET started = 1, updated_at = ? WHERE id = ? AND started = 0`,
		&sqlitex.ExecOptions{Args: []any{j.UpdatedAt.UnixNano(), j.ID}})
	if err != nil {
		return fmt.Errorf("starting job %d: %w", j.ID, err)
	}
	if conn.Changes() == 1 {
		return nil
	}

	exists := false
	err = sqlitex.Execute(conn, `SELECT 1 FROM jobs WHERE id = ?`, &sqlitex.ExecOptions{
		Args: []any{j.ID},
		ResultFunc: func(*sqlite.Stmt) error {
			exists = true
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("looking up job %d: %w", j.ID, err)
	}
	if !exists {
		return fmt.Errorf("job %d: %w", j.ID, job.ErrNotFound)
	}
	return fmt.Errorf("job %d: %w", j.ID, job.ErrAlreadyStarted)
}

// Save writes the mutable fields of j: output, started, exit code and
// update time.
func (s *Store) Save(ctx context.Context, j *job.Job) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE jobs SET output = ?, started = ?, exit_code = ?, updated_at = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{
			j.Output, j.Started, exitCodeArg(j.ExitCode), j.UpdatedAt.UnixNano(), j.ID,
		}})
	if err != nil {
		return fmt.Errorf("updating job %d: %w", j.ID, err)
	}
	if conn.Changes() == 0 {
		return fmt.Errorf("job %d: %w", j.ID, job.ErrNotFound)
	}
	return nil
}

// Load returns the job with the given ID or job.ErrNotFound.
func (s *Store) Load(ctx context.Context, id int64) (*job.Job, error) {
	jobs, err := s.query(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("job %d: %w", id, job.ErrNotFound)
	}
	return jobs[0], nil
}

// List returns every job, newest first.
func (s *Store) List(ctx context.Context) ([]*job.Job, error) {
	return s.query(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY id DESC")
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*job.Job, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var jobs []*job.Job
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			j, err := s.scanJob(stmt)
			if err != nil {
				return err
			}
			jobs = append(jobs, j)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) scanJob(stmt *sqlite.Stmt) (*job.Job, error) {
	j := &job.Job{
		ID:        stmt.ColumnInt64(0),
		Name:      stmt.ColumnText(1),
		Output:    stmt.ColumnText(4),
		Started:   stmt.ColumnBool(5),
		CreatedAt: time.Unix(0, stmt.ColumnInt64(7)).UTC(),
		UpdatedAt: time.Unix(0, stmt.ColumnInt64(8)).UTC(),
	}
	if !stmt.ColumnIsNull(6) {
		code := stmt.ColumnInt(6)
		j.ExitCode = &code
	}

	raw := make([]byte, stmt.ColumnLen(2))
	stmt.ColumnBytes(2, raw)
	params, err := s.decodeParams(raw, stmt.ColumnBool(3))
	if err != nil {
		return nil, fmt.Errorf("job %d: %w", j.ID, err)
	}
	j.Params = params
	return j, nil
}

func (s *Store) encodeParams(params job.Params) ([]byte, bool, error) {
	return s.seal("job params", params)
}

func (s *Store) decodeParams(raw []byte, isSealed bool) (job.Params, error) {
	var params job.Params
	err := s.open(raw, isSealed, &params)
	return params, err
}

func exitCodeArg(code *int) any {
	if code == nil {
		return nil
	}
	return *code
}
