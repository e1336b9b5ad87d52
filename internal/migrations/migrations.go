// Package migrations embeds the goose SQL migrations of both supported
// database dialects.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SQLite embed.FS

//go:embed postgres/*.sql
var Postgres embed.FS
