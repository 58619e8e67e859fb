package tenantstore

import "embed"

// Migrations holds the goose migrations for the Postgres backend.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations passed to goose.
const MigrationsDir = "migrations"
