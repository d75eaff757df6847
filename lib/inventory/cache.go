// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/fuzzy"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// SnapshotKey is the store key the inventory lives under.
const SnapshotKey = "machines_ls"

// DefaultTTL is how long a snapshot stays readable.
const DefaultTTL = 5 * time.Minute

var (
	// ErrNoSnapshot means no unexpired snapshot is stored.
	ErrNoSnapshot = errors.New("no cached inventory")

	// ErrNotFound means the requested machine is not in the
	// inventory, or there is no inventory to look in.
	ErrNotFound = errors.New("machine not found")
)

// ParseError reports docker-machine output that could not be
// interpreted during a refresh.
type ParseError = machine.ParseError

// Source is the docker-machine surface a refresh reads.
// *machine.Client implements it.
type Source interface {
	List(ctx context.Context) ([]machine.Entry, error)
	Inspect(ctx context.Context, name string) (map[string]any, error)
	IP(ctx context.Context, name string) (string, error)
	URL(ctx context.Context, name string) (string, error)
}

// Config holds the dependencies of a Cache.
type Config struct {
	// Source runs docker-machine. Required.
	Source Source

	// Registry resolves driver names. Required.
	Registry *driver.Registry

	// Store holds the snapshot. Required.
	Store SnapshotStore

	// Clock stamps snapshots. Required.
	Clock clock.Clock

	// TTL defaults to DefaultTTL.
	TTL time.Duration

	// Logger defaults to discarding.
	Logger *slog.Logger
}

// Cache is the machine inventory cache.
type Cache struct {
	source   Source
	registry *driver.Registry
	store    SnapshotStore
	clock    clock.Clock
	ttl      time.Duration
	logger   *slog.Logger

	refreshMu sync.Mutex
}

// New validates cfg and returns a Cache.
func New(cfg Config) (*Cache, error) {
	if cfg.Source == nil {
		return nil, errors.New("inventory: Source is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("inventory: Registry is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("inventory: Store is required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("inventory: Clock is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		source:   cfg.Source,
		registry: cfg.Registry,
		store:    cfg.Store,
		clock:    cfg.Clock,
		ttl:      ttl,
		logger:   logger,
	}, nil
}

// TTL returns the snapshot lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Refresh rebuilds the inventory from docker-machine and stores it.
// Any failure leaves the stored snapshot untouched.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	started := c.clock.Now()
	entries, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing machines: %w", err)
	}

	machines := make([]Record, 0, len(entries))
	for _, entry := range entries {
		record, err := c.describe(ctx, entry)
		if err != nil {
			return nil, err
		}
		machines = append(machines, record)
	}

	sum, err := digest(machines)
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{
		Machines:    machines,
		RefreshedAt: c.clock.Now(),
		Digest:      sum,
	}

	previousDigest := ""
	if previous, err := c.store.GetSnapshot(ctx, SnapshotKey); err == nil {
		previousDigest = previous.Digest
	}

	if err := c.store.SetSnapshot(ctx, SnapshotKey, snapshot, c.ttl); err != nil {
		return nil, fmt.Errorf("storing inventory: %w", err)
	}
	c.logger.Info("inventory refreshed",
		"machines", len(machines),
		"changed", previousDigest != sum,
		"duration", clock.Since(c.clock, started),
	)
	return snapshot, nil
}

func (c *Cache) describe(ctx context.Context, entry machine.Entry) (Record, error) {
	record := Record{Name: entry.Name, State: entry.State}

	document, err := c.source.Inspect(ctx, entry.Name)
	if err != nil {
		return Record{}, fmt.Errorf("inspecting %s: %w", entry.Name, err)
	}
	record.Inspect = document

	if record.IP, err = c.source.IP(ctx, entry.Name); err != nil {
		return Record{}, fmt.Errorf("resolving ip of %s: %w", entry.Name, err)
	}
	if record.URL, err = c.source.URL(ctx, entry.Name); err != nil {
		return Record{}, fmt.Errorf("resolving url of %s: %w", entry.Name, err)
	}

	record.DriverName, _ = document["DriverName"].(string)
	c.resolve(&record)
	return record, nil
}

func (c *Cache) resolve(record *Record) {
	record.Driver = nil
	if spec, ok := c.registry.Lookup(record.DriverName); ok {
		record.Driver = spec
	} else if record.DriverName != "" {
		c.logger.Debug("uncatalogued driver", "machine", record.Name, "driver", record.DriverName)
	}
}

// Snapshot returns the inventory. With cached set, it returns the
// stored snapshot or ErrNoSnapshot; otherwise it refreshes first.
func (c *Cache) Snapshot(ctx context.Context, cached bool) (*Snapshot, error) {
	if !cached {
		return c.Refresh(ctx)
	}
	snapshot, err := c.store.GetSnapshot(ctx, SnapshotKey)
	if err != nil {
		return nil, err
	}
	for i := range snapshot.Machines {
		c.resolve(&snapshot.Machines[i])
	}
	return snapshot, nil
}

// Get returns the record for name. With cached set and no unexpired
// snapshot stored, the error matches both ErrNotFound and
// ErrNoSnapshot.
func (c *Cache) Get(ctx context.Context, name string, cached bool) (*Record, error) {
	snapshot, err := c.Snapshot(ctx, cached)
	if errors.Is(err, ErrNoSnapshot) {
		return nil, fmt.Errorf("machine %q: %w (%w)", name, ErrNotFound, ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}
	record, ok := snapshot.Find(name)
	if !ok {
		return nil, fmt.Errorf("machine %q: %w", name, ErrNotFound)
	}
	return record, nil
}

// Suggest returns up to three cached machine names resembling name.
// It never refreshes and returns nothing when nothing is cached.
func (c *Cache) Suggest(ctx context.Context, name string) []string {
	snapshot, err := c.Snapshot(ctx, true)
	if err != nil {
		return nil
	}
	return fuzzy.Suggest(name, snapshot.Names(), 3)
}
