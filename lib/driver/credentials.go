// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/machinery/lib/machine"
)

// ErrCredentialsNotFound is returned for an unknown saved credentials
// ID.
var ErrCredentialsNotFound = errors.New("credentials not found")

// Credentials is a saved set of credential values for one driver. A
// job created with it takes Values as its credentials.
type Credentials struct {
	ID        int64           `json:"id"`
	Driver    string          `json:"driver"`
	Label     string          `json:"label"`
	Values    machine.Options `json:"values"`
	CreatedAt time.Time       `json:"created_at"`
}

// ValidateCredentials checks credentials alone against the catalogue,
// with the same rules as Validate.
func (s *Spec) ValidateCredentials(credentials machine.Options) error {
	errs := validateGroup("credentials", s.Credentials, credentials.Without(DriverKey))
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("driver %s: %w", s.ID, errors.Join(errs...))
}
