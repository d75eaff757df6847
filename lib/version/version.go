// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the machinery binary.
//
// The variables below are injected with -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/machinery/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When they are not injected, the commit and dirty flag fall back to
// the VCS stamp the Go toolchain records in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the build had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the release version.
	Version = "0.1.0-dev"
)

// Info returns "version (commit[-dirty], build time)".
func Info() string {
	commit, dirty := vcsStamp()
	suffix := ""
	if dirty {
		suffix = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, commit, suffix, BuildTime)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

func vcsStamp() (commit string, dirty bool) {
	commit, dirty = GitCommit, GitDirty == "true"
	if commit != "unknown" {
		return commit, dirty
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, dirty
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return commit, dirty
}
