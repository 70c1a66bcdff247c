// Package migrations holds the goose migrations of the daily_pages history table
package migrations

import "embed"

// FS contains the SQL migration files
//
//go:embed *.sql
var FS embed.FS
