// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package machine

// SwarmEnableKey is the swarm option that decides whether the swarm
// block is emitted at all. It is never emitted as a flag itself.
const SwarmEnableKey = "enable_swarm"

// CreateParams describes one "docker-machine create" invocation.
type CreateParams struct {
	// Name is the machine name, the positional argument of create.
	Name string

	// Swarm holds swarm_* options plus SwarmEnableKey.
	Swarm Options

	// Driver holds the driver selection ("driver": "virtualbox") and
	// the driver's credential options.
	Driver Options

	// Settings holds the driver's tuning options.
	Settings Options
}

// CreateCommand returns the argument vector
//
//	binary create <name> [--swarm <swarm flags>] <driver flags> <settings flags>
//
// The swarm block appears only when Swarm holds SwarmEnableKey set to
// true. params is not modified.
func CreateCommand(binary string, params CreateParams) []string {
	argv := []string{binary, "create", params.Name}
	if params.Swarm.Bool(SwarmEnableKey) {
		argv = append(argv, "--swarm")
		argv = append(argv, FlagArgs(params.Swarm.Without(SwarmEnableKey))...)
	}
	argv = append(argv, FlagArgs(params.Driver)...)
	argv = append(argv, FlagArgs(params.Settings)...)
	return argv
}

// RemoveCommand returns "binary rm <name>", with "-f" appended when
// force is set.
func RemoveCommand(binary, name string, force bool) []string {
	argv := []string{binary, "rm", name}
	if force {
		argv = append(argv, "-f")
	}
	return argv
}
