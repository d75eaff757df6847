// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bureau-foundation/machinery/lib/machine"
)

// DriverKey is the option under which a job's driver mapping names the
// docker-machine driver, rendered as --driver=<id>.
const DriverKey = "driver"

// Spec describes one docker-machine driver.
type Spec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Logo        string   `json:"logo"`
	Category    Category `json:"category"`
	Credentials []Field  `json:"credentials"`
	Settings    []Field  `json:"settings"`

	// Description is markdown listing the driver's flags.
	Description string `json:"description"`
}

func (s *Spec) check() error {
	if s.ID == "" {
		return errors.New("driver without id")
	}
	if s.Category != CategoryCloud && s.Category != CategoryLocal {
		return fmt.Errorf("driver %q: unknown category %q", s.ID, s.Category)
	}
	seen := make(map[string]bool)
	for _, field := range append(append([]Field(nil), s.Credentials...), s.Settings...) {
		if seen[field.Key] {
			return fmt.Errorf("driver %q: field %q declared twice", s.ID, field.Key)
		}
		seen[field.Key] = true
		if err := field.check(); err != nil {
			return fmt.Errorf("driver %q: %w", s.ID, err)
		}
	}
	return nil
}

// Field returns the credential or settings field with key.
func (s *Spec) Field(key string) (*Field, bool) {
	for i := range s.Credentials {
		if s.Credentials[i].Key == key {
			return &s.Credentials[i], true
		}
	}
	for i := range s.Settings {
		if s.Settings[i].Key == key {
			return &s.Settings[i], true
		}
	}
	return nil, false
}

// IsCredential reports whether key is one of the driver's credential
// fields. Credential values are masked when a command line is shown.
func (s *Spec) IsCredential(key string) bool {
	for _, field := range s.Credentials {
		if field.Key == key {
			return true
		}
	}
	return false
}

// Defaults returns the settings that have catalogue defaults, in
// catalogue order.
func (s *Spec) Defaults() machine.Options {
	var defaults machine.Options
	for _, field := range s.Settings {
		if field.Default != nil {
			defaults = append(defaults, machine.Option{Key: field.Key, Value: field.Default})
		}
	}
	return defaults
}

// DriverOptions returns the driver mapping of a job: the driver
// selection followed by the credentials.
func (s *Spec) DriverOptions(credentials machine.Options) machine.Options {
	options := machine.Options{{Key: DriverKey, Value: s.ID}}
	return options.Merge(credentials.Without(DriverKey))
}

// FileFields returns the keys of file-typed credential and settings
// fields, whose values are local paths.
func (s *Spec) FileFields() []string {
	var keys []string
	for _, field := range append(append([]Field(nil), s.Credentials...), s.Settings...) {
		if field.Type == TypeFile {
			keys = append(keys, field.Key)
		}
	}
	return keys
}

// Validate checks credentials and settings against the catalogue:
// required fields must be present and non-empty, values must match
// their field type and choices, and no unknown keys may appear. The
// DriverKey entry of credentials is ignored. All problems are
// reported together.
func (s *Spec) Validate(credentials, settings machine.Options) error {
	var errs []error
	errs = append(errs, validateGroup("credentials", s.Credentials, credentials.Without(DriverKey))...)
	errs = append(errs, validateGroup("settings", s.Settings, settings)...)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("driver %s: %w", s.ID, errors.Join(errs...))
}

func validateGroup(group string, fields []Field, values machine.Options) []error {
	var errs []error
	known := make(map[string]bool, len(fields))
	for _, field := range fields {
		known[field.Key] = true
		value, _ := values.Get(field.Key)
		if isBlank(value) {
			if field.Required {
				errs = append(errs, fmt.Errorf("%s.%s (%s) is required", group, field.Key, field.Label))
			}
			continue
		}
		if err := field.validate(value); err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", group, field.Key, err))
		}
	}
	for _, key := range values.Keys() {
		if !known[key] {
			errs = append(errs, fmt.Errorf("%s.%s is not a field of this driver", group, key))
		}
	}
	return errs
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
