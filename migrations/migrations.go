// Package migrations embeds the Postgres schema scripts applied by cmd/migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
