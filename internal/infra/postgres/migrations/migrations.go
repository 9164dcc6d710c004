package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the schema of the append-only event log.
var Migrations = migrate.NewMigrations()
