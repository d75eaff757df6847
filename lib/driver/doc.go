// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package driver is the catalogue of docker-machine drivers.
//
// Each driver is described by a [Spec]: its docker-machine id
// ("amazonec2"), display name, logo, category (cloud or local), the
// credential fields that select an account, and the settings fields
// that shape the machine. The catalogue is JSONC data embedded in the
// binary and parsed once by [Default]; [Parse] accepts an alternative
// document for tests and site-specific catalogues.
//
// The registry is reference data. The job pipeline looks up a driver
// only to label inventory records and to pre-fill defaults; field
// values pass through to docker-machine without interpretation.
// [Spec.Validate] is an operator convenience used by the CLI before a
// job is submitted.
package driver
