// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/bureau-foundation/machinery/lib/clock"
)

// SnapshotStore persists snapshots under a key with a time-to-live.
// GetSnapshot returns ErrNoSnapshot when the key was never set or its
// TTL has elapsed.
type SnapshotStore interface {
	SetSnapshot(ctx context.Context, key string, snapshot *Snapshot, ttl time.Duration) error
	GetSnapshot(ctx context.Context, key string) (*Snapshot, error)
}

// MemoryStore is a process-local SnapshotStore.
type MemoryStore struct {
	clock   clock.Clock
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snapshot Snapshot
	expires  time.Time
}

// NewMemoryStore returns an empty MemoryStore measuring TTLs with
// clock.
func NewMemoryStore(clock clock.Clock) *MemoryStore {
	return &MemoryStore{clock: clock, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) SetSnapshot(_ context.Context, key string, snapshot *Snapshot, ttl time.Duration) error {
	stored := *snapshot
	stored.Machines = append([]Record(nil), snapshot.Machines...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{snapshot: stored, expires: s.clock.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) GetSnapshot(_ context.Context, key string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	if !s.clock.Now().Before(entry.expires) {
		delete(s.entries, key)
		return nil, ErrNoSnapshot
	}
	snapshot := entry.snapshot
	snapshot.Machines = append([]Record(nil), entry.snapshot.Machines...)
	return &snapshot, nil
}
