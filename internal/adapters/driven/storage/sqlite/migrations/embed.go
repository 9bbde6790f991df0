// Package migrations embeds the versioned schema of the SQLite store.
package migrations

import "embed"

// FS holds every NNN_name.up.sql and NNN_name.down.sql pair.
//
//go:embed *.sql
var FS embed.FS
