// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/machinery/lib/fuzzy"
)

//go:embed catalog.jsonc
var catalogSource []byte

// Category groups drivers for display.
type Category string

const (
	CategoryCloud Category = "cloud"
	CategoryLocal Category = "local"
)

// Registry maps driver ids to specs. It is immutable after Parse and
// safe for concurrent use.
type Registry struct {
	specs []*Spec
	byID  map[string]*Spec
}

type catalogDocument struct {
	Drivers []*Spec `json:"drivers"`
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	registry, err := Parse(catalogSource)
	if err != nil {
		panic("driver: embedded catalogue: " + err.Error())
	}
	return registry
})

// Default returns the registry built from the embedded catalogue.
func Default() *Registry {
	return defaultRegistry()
}

// Parse builds a registry from a JSONC catalogue document. Driver ids
// must be unique, and every field key must be unique within its
// driver.
func Parse(source []byte) (*Registry, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(source)))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()

	var document catalogDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("parsing driver catalogue: %w", err)
	}

	registry := &Registry{byID: make(map[string]*Spec, len(document.Drivers))}
	for _, spec := range document.Drivers {
		if err := spec.check(); err != nil {
			return nil, err
		}
		if _, exists := registry.byID[spec.ID]; exists {
			return nil, fmt.Errorf("driver %q: declared twice", spec.ID)
		}
		registry.byID[spec.ID] = spec
		registry.specs = append(registry.specs, spec)
	}
	return registry, nil
}

// Lookup returns the spec for a docker-machine driver id.
func (r *Registry) Lookup(id string) (*Spec, bool) {
	spec, ok := r.byID[id]
	return spec, ok
}

// All returns every spec in catalogue order.
func (r *Registry) All() []*Spec {
	return append([]*Spec(nil), r.specs...)
}

// ByCategory returns the specs in category, sorted by display name.
func (r *Registry) ByCategory(category Category) []*Spec {
	var specs []*Spec
	for _, spec := range r.specs {
		if spec.Category == category {
			specs = append(specs, spec)
		}
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Suggest returns up to three driver ids resembling id.
func (r *Registry) Suggest(id string) []string {
	ids := make([]string, len(r.specs))
	for i, spec := range r.specs {
		ids[i] = spec.ID
	}
	return fuzzy.Suggest(id, ids, 3)
}
