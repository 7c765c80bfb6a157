// Package db provides embedded database migration files.
package db

import "embed"

// Migrations contains the versioned schema migrations, consumed by the
// golang-migrate iofs source at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS
