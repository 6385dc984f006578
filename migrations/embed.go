// Package migrations embeds the goose SQL migrations so both binaries ship them.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
