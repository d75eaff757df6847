// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads machinery's YAML configuration.
//
// A configuration file is named by the --config flag (via [LoadFile])
// or the MACHINERY_CONFIG environment variable (via [Load]). Without
// either, [Load] returns the built-in defaults. There is no search
// path.
//
// The file may contain development, staging and production sections
// that override base values when [Config].Environment matches.
//
// After loading, ${HOME}, ${MACHINERY_ROOT} and ${VAR:-default}
// patterns in path-like fields are expanded. Environment variables
// reach the configuration only through such patterns; they never
// override a value written in the file.
package config
