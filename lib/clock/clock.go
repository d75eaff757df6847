// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so that TTL expiry and job
// timestamps can be driven deterministically in tests.
//
// Production code takes a Clock and is handed Real(). Tests hand it a
// *FakeClock from Fake() and move time with Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	cache := inventory.New(inventory.Config{Clock: c, ...})
//	c.Advance(6 * time.Minute) // the cached snapshot is now expired
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Since returns the time elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
