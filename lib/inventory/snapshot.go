// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/machinery/lib/codec"
	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// Record is one machine of a snapshot.
type Record struct {
	Name  string        `json:"name"  cbor:"name"`
	State machine.State `json:"state" cbor:"state"`

	// Inspect is the document printed by "docker-machine inspect".
	Inspect map[string]any `json:"inspect" cbor:"inspect"`

	// IP and URL are empty when docker-machine had no answer, which is
	// normal for a stopped machine.
	IP  string `json:"ip"  cbor:"ip"`
	URL string `json:"url" cbor:"url"`

	// DriverName is Inspect["DriverName"].
	DriverName string `json:"driver_name" cbor:"driver_name"`

	// Driver is the catalogue entry for DriverName, or nil when the
	// driver is not catalogued. It is resolved again whenever a
	// snapshot is loaded and is not persisted.
	Driver *driver.Spec `json:"-" cbor:"-"`
}

// DriverSection returns the "Driver" object of the inspect document.
func (r *Record) DriverSection() map[string]any {
	return section(r.Inspect, "Driver")
}

// HostOptions returns the "HostOptions" object of the inspect document.
func (r *Record) HostOptions() map[string]any {
	return section(r.Inspect, "HostOptions")
}

// Details returns the inspect document without the Driver and
// HostOptions sections, which are shown separately.
func (r *Record) Details() map[string]any {
	details := make(map[string]any, len(r.Inspect))
	for key, value := range r.Inspect {
		if key == "Driver" || key == "HostOptions" {
			continue
		}
		details[key] = value
	}
	return details
}

func section(document map[string]any, key string) map[string]any {
	value, _ := document[key].(map[string]any)
	return value
}

// Snapshot is the complete inventory as of RefreshedAt.
type Snapshot struct {
	Machines    []Record  `json:"machines"     cbor:"machines"`
	RefreshedAt time.Time `json:"refreshed_at" cbor:"refreshed_at"`

	// Digest is the hex BLAKE3 hash of the deterministic encoding of
	// Machines. Two refreshes observing the same inventory produce the
	// same digest.
	Digest string `json:"digest" cbor:"digest"`
}

// Find returns the record named name.
func (s *Snapshot) Find(name string) (*Record, bool) {
	for i := range s.Machines {
		if s.Machines[i].Name == name {
			return &s.Machines[i], true
		}
	}
	return nil, false
}

// Names returns machine names in listing order.
func (s *Snapshot) Names() []string {
	names := make([]string, len(s.Machines))
	for i, record := range s.Machines {
		names[i] = record.Name
	}
	return names
}

func digest(machines []Record) (string, error) {
	encoded, err := codec.Marshal(machines)
	if err != nil {
		return "", fmt.Errorf("encoding inventory for digest: %w", err)
	}
	sum := blake3.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
