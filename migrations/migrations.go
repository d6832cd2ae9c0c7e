// Package migrations embeds the versioned schema so the binary can upgrade
// a database without the SQL files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
