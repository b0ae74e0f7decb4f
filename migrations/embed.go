// Package migrations contains the embedded SQL schema history. Files are
// applied in name order by sys.ApplyMigrations; never edit an applied file,
// add a new one.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
