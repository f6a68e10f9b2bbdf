// Package migrations embeds the goose SQL migrations for the SQL account
// store backends. Postgres and SQLite carry separate migration sets
// because the dialects disagree on column types and defaults.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
