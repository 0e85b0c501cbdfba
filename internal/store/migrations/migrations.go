// Package migrations embeds the SQL schema for the profile's queue.db.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
