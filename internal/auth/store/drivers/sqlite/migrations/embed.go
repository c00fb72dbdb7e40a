// Package migrations holds the record store schema, embedded into the binary
// and applied at startup by golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
