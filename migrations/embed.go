// AngelaMos | 2026
// embed.go

// Package migrations holds the versioned PostgreSQL schema applied by
// golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
