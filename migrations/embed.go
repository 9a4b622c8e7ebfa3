// Package migrations holds the SQL schema, embedded so the CLI can migrate
// without the source tree present.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
