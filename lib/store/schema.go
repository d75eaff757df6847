// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

// migrations are applied in order by sqlitepool. Released entries are
// never edited.
var migrations = []string{
	`
CREATE TABLE jobs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	params      BLOB    NOT NULL,
	sealed      INTEGER NOT NULL DEFAULT 0,
	output      TEXT    NOT NULL DEFAULT '',
	started     INTEGER NOT NULL DEFAULT 0,
	exit_code   INTEGER,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE snapshots (
	key          TEXT    PRIMARY KEY,
	compression  INTEGER NOT NULL,
	size         INTEGER NOT NULL,
	data         BLOB    NOT NULL,
	expires_at   INTEGER NOT NULL
);
`,
	`
CREATE TABLE credentials (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	driver      TEXT    NOT NULL,
	label       TEXT    NOT NULL DEFAULT '',
	data        BLOB    NOT NULL,
	sealed      INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);

CREATE INDEX credentials_driver ON credentials (driver);
`,
}
