// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package machine provides typed access to the docker-machine CLI.
//
// The package has two halves. The pure half turns structured
// configuration into argument vectors: [Options] is an ordered
// key/value mapping decoded from JSON in document order, [FlagArgs]
// renders one mapping as command-line flags, and [CreateCommand]
// assembles a complete "docker-machine create" invocation from the
// swarm, driver and settings mappings of a provisioning request. The
// effectful half is [Client], which runs ls, inspect, ip, url, rm and
// create through lib/process and parses what they print.
//
// Flag rendering follows docker-machine's conventions: a key such as
// "virtualbox_disk_size" becomes "--virtualbox-disk-size", true
// booleans are bare switches, and false, null and empty-string values
// are omitted entirely. Zero is a value like any other and is emitted.
package machine
