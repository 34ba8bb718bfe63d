// Package migrations embeds the goose migrations for every SQL backend.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql
var sqliteFS embed.FS

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

// SQLite returns the SQLite migrations rooted at the migration files
func SQLite() fs.FS {
	sub, _ := fs.Sub(sqliteFS, "sqlite")
	return sub
}

// ClickHouse returns the ClickHouse migrations rooted at the migration files
func ClickHouse() fs.FS {
	sub, _ := fs.Sub(clickhouseFS, "clickhouse")
	return sub
}
