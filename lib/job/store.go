// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import "context"

// Store persists jobs. Create assigns job.ID. Load returns ErrNotFound
// for an unknown ID. List returns jobs newest first.
//
// Start marks the stored job started and fails with ErrAlreadyStarted
// if it already was. The check and the update are one atomic step, so
// of several copies of a job, loaded by any number of processes, only
// one can be started.
type Store interface {
	Create(ctx context.Context, job *Job) error
	Start(ctx context.Context, job *Job) error
	Save(ctx context.Context, job *Job) error
	Load(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
}
