// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/bureau-foundation/machinery/lib/clock"
	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
	"github.com/bureau-foundation/machinery/lib/testutil"
)

// TestRefreshThroughClient drives a refresh against a scripted
// docker-machine to cover the real process plumbing end to end.
func TestRefreshThroughClient(t *testing.T) {
	dir := t.TempDir()
	binary := testutil.WriteScript(t, dir, "docker-machine", `case "$1" in
ls)
	echo "NAME ACTIVE DRIVER STATE URL"
	echo "web  -  amazonec2  Running  tcp://10.0.0.5:2376"
	;;
inspect) echo '{"DriverName": "amazonec2", "Driver": {"Region": "us-east-1"}}' ;;
ip) echo "10.0.0.5" ;;
url) echo "tcp://10.0.0.5:2376" ;;
esac
`)

	fake := clock.Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	cache, err := New(Config{
		Source:   machine.NewClient(binary, nil),
		Registry: driver.Default(),
		Store:    NewMemoryStore(fake),
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	record, err := cache.Get(context.Background(), "web", false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.IP != "10.0.0.5" || record.State != machine.StateRunning {
		t.Errorf("record = %+v", record)
	}
	if record.Driver == nil || record.Driver.ID != "amazonec2" {
		t.Errorf("driver = %+v", record.Driver)
	}
	if record.DriverSection()["Region"] != "us-east-1" {
		t.Errorf("DriverSection() = %v", record.DriverSection())
	}
}
