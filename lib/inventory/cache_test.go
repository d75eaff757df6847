// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
)

type fakeSource struct {
	mu       sync.Mutex
	entries  []machine.Entry
	inspect  map[string]map[string]any
	ips      map[string]string
	failList error
	failOn   string
	lists    int
	inspects int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: []machine.Entry{
			{Name: "dev", State: machine.StateRunning},
			{Name: "idle", State: machine.StateStopped},
		},
		inspect: map[string]map[string]any{
			"dev": {
				"DriverName":  "virtualbox",
				"Driver":      map[string]any{"CPU": float64(1)},
				"HostOptions": map[string]any{"Driver": ""},
				"Name":        "dev",
			},
			"idle": {"DriverName": "bespoke"},
		},
		ips: map[string]string{"dev": "192.168.99.100"},
	}
}

func (s *fakeSource) List(context.Context) ([]machine.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists++
	if s.failList != nil {
		return nil, s.failList
	}
	return append([]machine.Entry(nil), s.entries...), nil
}

func (s *fakeSource) Inspect(_ context.Context, name string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inspects++
	if name == s.failOn {
		return nil, &machine.ParseError{Command: "inspect", Machine: name, Detail: "not json"}
	}
	return s.inspect[name], nil
}

func (s *fakeSource) IP(_ context.Context, name string) (string, error) {
	return s.ips[name], nil
}

func (s *fakeSource) URL(_ context.Context, name string) (string, error) {
	if ip := s.ips[name]; ip != "" {
		return "tcp://" + ip + ":2376", nil
	}
	return "", nil
}

func newTestCache(t *testing.T, source Source) (*Cache, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cache, err := New(Config{
		Source:   source,
		Registry: driver.Default(),
		Store:    NewMemoryStore(fake),
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cache, fake
}

func TestRefreshBuildsRecords(t *testing.T) {
	source := newFakeSource()
	cache, fake := newTestCache(t, source)

	snapshot, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !snapshot.RefreshedAt.Equal(fake.Now()) {
		t.Errorf("RefreshedAt = %v, want %v", snapshot.RefreshedAt, fake.Now())
	}
	if got := snapshot.Names(); len(got) != 2 || got[0] != "dev" || got[1] != "idle" {
		t.Fatalf("Names() = %v", got)
	}

	dev, _ := snapshot.Find("dev")
	if dev.State != machine.StateRunning || dev.IP != "192.168.99.100" || dev.URL != "tcp://192.168.99.100:2376" {
		t.Errorf("dev = %+v", dev)
	}
	if dev.DriverName != "virtualbox" || dev.Driver == nil || dev.Driver.ID != "virtualbox" {
		t.Errorf("dev driver = %q %+v", dev.DriverName, dev.Driver)
	}
	if _, ok := dev.Details()["Driver"]; ok {
		t.Error("Details() kept the Driver section")
	}
	if _, ok := dev.Details()["HostOptions"]; ok {
		t.Error("Details() kept the HostOptions section")
	}
	if dev.DriverSection()["CPU"] != float64(1) {
		t.Errorf("DriverSection() = %v", dev.DriverSection())
	}

	idle, _ := snapshot.Find("idle")
	if idle.IP != "" || idle.URL != "" {
		t.Errorf("stopped machine has addresses: %+v", idle)
	}
	if idle.Driver != nil {
		t.Errorf("uncatalogued driver resolved to %+v", idle.Driver)
	}
	if snapshot.Digest == "" {
		t.Error("Digest is empty")
	}
}

func TestDigestStableAcrossRefreshes(t *testing.T) {
	source := newFakeSource()
	cache, fake := newTestCache(t, source)

	first, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	fake.Advance(time.Minute)
	second, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if first.Digest != second.Digest {
		t.Errorf("digest changed without inventory change: %s vs %s", first.Digest, second.Digest)
	}

	source.mu.Lock()
	source.entries = source.entries[:1]
	source.mu.Unlock()
	third, err := cache.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if third.Digest == second.Digest {
		t.Error("digest unchanged after a machine disappeared")
	}
}

func TestCachedReadsExpire(t *testing.T) {
	source := newFakeSource()
	cache, fake := newTestCache(t, source)
	ctx := context.Background()

	if _, err := cache.Snapshot(ctx, true); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Snapshot(cached) before refresh = %v, want ErrNoSnapshot", err)
	}

	if _, err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fake.Advance(DefaultTTL - time.Second)
	record, err := cache.Get(ctx, "dev", true)
	if err != nil {
		t.Fatalf("Get(cached) inside TTL: %v", err)
	}
	if record.Driver == nil {
		t.Error("cached record lost its driver resolution")
	}

	fake.Advance(time.Second)
	_, err = cache.Get(ctx, "dev", true)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Get(cached) after TTL = %v, want ErrNotFound and ErrNoSnapshot", err)
	}

	source.mu.Lock()
	lists := source.lists
	source.mu.Unlock()
	if lists != 1 {
		t.Errorf("cached reads ran ls: %d invocations, want 1", lists)
	}
}

func TestUncachedGetRefreshes(t *testing.T) {
	source := newFakeSource()
	cache, _ := newTestCache(t, source)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "dev", false); err != nil {
		t.Fatalf("Get(uncached): %v", err)
	}
	if _, err := cache.Get(ctx, "nope", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) = %v, want ErrNotFound", err)
	}
	if _, err := cache.Get(ctx, "nope", true); errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Get(nope, cached) with a snapshot reported ErrNoSnapshot: %v", err)
	}
	if source.lists != 2 {
		t.Errorf("ls ran %d times, want 2", source.lists)
	}
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	source := newFakeSource()
	cache, _ := newTestCache(t, source)
	ctx := context.Background()

	before, err := cache.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	source.failOn = "idle"
	_, err = cache.Refresh(ctx)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Refresh with bad inspect = %v, want ParseError", err)
	}
	if parseErr.Machine != "idle" {
		t.Errorf("ParseError.Machine = %q", parseErr.Machine)
	}

	source.failOn = ""
	source.failList = errors.New("ls exploded")
	if _, err := cache.Refresh(ctx); err == nil {
		t.Fatal("Refresh with failing ls succeeded")
	}

	after, err := cache.Snapshot(ctx, true)
	if err != nil {
		t.Fatalf("Snapshot(cached): %v", err)
	}
	if after.Digest != before.Digest || !after.RefreshedAt.Equal(before.RefreshedAt) {
		t.Errorf("failed refresh replaced the snapshot")
	}
}

func TestSuggest(t *testing.T) {
	source := newFakeSource()
	cache, _ := newTestCache(t, source)
	ctx := context.Background()

	if got := cache.Suggest(ctx, "dve"); len(got) != 0 {
		t.Errorf("Suggest without snapshot = %v, want nothing", got)
	}
	if _, err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	got := cache.Suggest(ctx, "dv")
	if len(got) == 0 || got[0] != "dev" {
		t.Errorf("Suggest(dv) = %v, want dev first", got)
	}
	if got := cache.Suggest(ctx, "dve"); len(got) == 0 || got[0] != "dev" {
		t.Errorf("Suggest(dve) = %v, want the transposed dev first", got)
	}
	if source.lists != 1 {
		t.Errorf("Suggest refreshed: ls ran %d times", source.lists)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	fake := clock.Fake(time.Now())
	full := Config{Source: newFakeSource(), Registry: driver.Default(), Store: NewMemoryStore(fake), Clock: fake}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"source", func(c *Config) { c.Source = nil }},
		{"registry", func(c *Config) { c.Registry = nil }},
		{"store", func(c *Config) { c.Store = nil }},
		{"clock", func(c *Config) { c.Clock = nil }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := full
			test.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("New succeeded")
			}
		})
	}

	cache, err := New(full)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cache.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", cache.TTL(), DefaultTTL)
	}
}
