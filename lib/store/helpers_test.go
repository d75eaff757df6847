// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/bureau-foundation/machinery/lib/inventory"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// unusedSource fails the test if a cached read reaches docker-machine.
type unusedSource struct{ t *testing.T }

func (u unusedSource) List(context.Context) ([]machine.Entry, error) {
	u.t.Error("docker-machine ls called on a cached read")
	return nil, nil
}

func (u unusedSource) Inspect(context.Context, string) (map[string]any, error) {
	u.t.Error("docker-machine inspect called on a cached read")
	return nil, nil
}

// emptyInventory stands in for the cache when a test only exercises
// job execution.
type emptyInventory struct{}

func (emptyInventory) Refresh(context.Context) (*inventory.Snapshot, error) {
	return &inventory.Snapshot{}, nil
}

func (emptyInventory) Snapshot(context.Context, bool) (*inventory.Snapshot, error) {
	return nil, inventory.ErrNoSnapshot
}

func (u unusedSource) IP(context.Context, string) (string, error)  { return "", nil }
func (u unusedSource) URL(context.Context, string) (string, error) { return "", nil }
