// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAdvance(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}

	clock.Advance(90 * time.Second)
	if got := Since(clock, epoch); got != 90*time.Second {
		t.Errorf("Since(epoch) = %v, want 90s", got)
	}

	clock.Advance(0)
	if got := clock.Now(); !got.Equal(epoch.Add(90 * time.Second)) {
		t.Errorf("Advance(0) moved the clock to %v", got)
	}
}

func TestFakeSet(t *testing.T) {
	clock := Fake(epoch)
	later := epoch.Add(time.Hour)
	clock.Set(later)
	if got := clock.Now(); !got.Equal(later) {
		t.Errorf("Now() = %v, want %v", got, later)
	}
}

func TestFakeRejectsGoingBackwards(t *testing.T) {
	tests := []struct {
		name string
		move func(*FakeClock)
	}{
		{"negative advance", func(c *FakeClock) { c.Advance(-time.Second) }},
		{"earlier set", func(c *FakeClock) { c.Set(epoch.Add(-time.Second)) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected a panic")
				}
			}()
			test.move(Fake(epoch))
		})
	}
}

func TestFakeConcurrentAdvance(t *testing.T) {
	clock := Fake(epoch)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				clock.Advance(time.Millisecond)
				_ = clock.Now()
			}
		}()
	}
	wg.Wait()
	if got := Since(clock, epoch); got != time.Second {
		t.Errorf("after 1000 advances of 1ms, elapsed = %v, want 1s", got)
	}
}

func TestRealTracksWallClock(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	if got.Before(before) {
		t.Errorf("Real().Now() = %v, before %v", got, before)
	}
}
