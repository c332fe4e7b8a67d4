// Package migrations встраивает SQL-миграции схемы в бинарный файл.
package migrations

import "embed"

// FS содержит файлы миграций golang-migrate.
//
//go:embed *.sql
var FS embed.FS
