// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package render formats machinery's human-readable output: aligned
// tables, coloured machine states and job statuses, syntax-highlighted
// JSON, and driver descriptions written in markdown.
//
// A [Renderer] decides once whether to emit colour. With colour off
// every method returns plain text, which is what scripts and tests
// see.
package render
