// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts job parameters at rest with age.
//
// Job parameters carry cloud credentials (access keys, passwords,
// subscription certificates). When an identity file is configured the
// job store seals the parameter document with a [Sealer] before
// writing it, and opens it on load. The identity's own recipient is
// always included, so the host that sealed a document can open it;
// extra recipients let an operator escrow key read it too.
//
// Identity files use the format written by age-keygen and by
// [WriteIdentityFile]: comment lines followed by one
// AGE-SECRET-KEY-1... line.
package sealed
