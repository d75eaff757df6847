// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/machinery/lib/driver"
	"github.com/bureau-foundation/machinery/lib/machine"
)

// StageFiles copies the local files named by spec's file-typed fields
// in each of options into directory and points the options at the
// copies. Values that are empty or not strings are left alone.
func StageFiles(directory string, spec *driver.Spec, options ...*machine.Options) error {
	for _, key := range spec.FileFields() {
		for _, group := range options {
			value, ok := group.Get(key)
			if !ok {
				continue
			}
			source, ok := value.(string)
			if !ok || source == "" {
				continue
			}
			staged, err := stageFile(directory, source)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			group.Set(key, staged)
		}
	}
	return nil
}

func stageFile(directory, source string) (string, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return "", err
	}
	destination := filepath.Join(directory, filepath.Base(source))
	if err := os.WriteFile(destination, data, 0o600); err != nil {
		return "", err
	}
	return destination, nil
}
