// Package migrations embeds the schema of the PostgreSQL record store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
