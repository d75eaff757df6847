// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework of the machinery binary.
//
// A [Command] tree is dispatched by the first positional argument.
// Leaf commands describe their flags with a tagged parameter struct
// ([FlagsFromParams]) and receive a context and a scoped logger in
// Run. Commands that produce data embed [JSONOutput] for --json.
//
// [Environment] carries what the global flags select (configuration
// file, log level, colour) and opens the runtime a command works
// against: the job store, the docker-machine client, the inventory
// cache and the job manager.
package cli
