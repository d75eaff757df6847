// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSealed is returned when loading sealed job parameters or saved
// credentials without a sealer.
var ErrSealed = errors.New("stored values are sealed and no identity is configured")

// seal encodes value as JSON and, when a sealer is configured,
// encrypts it. The boolean reports whether the result is sealed.
func (s *Store) seal(what string, value any) ([]byte, bool, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, false, fmt.Errorf("encoding %s: %w", what, err)
	}
	if s.sealer == nil {
		return encoded, false, nil
	}
	sealedValue, err := s.sealer.Seal(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("sealing %s: %w", what, err)
	}
	return sealedValue, true, nil
}

func (s *Store) open(raw []byte, isSealed bool, into any) error {
	if isSealed {
		if s.sealer == nil {
			return ErrSealed
		}
		opened, err := s.sealer.Open(raw)
		if err != nil {
			return fmt.Errorf("opening sealed values: %w", err)
		}
		raw = opened
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decoding stored values: %w", err)
	}
	return nil
}
