package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaFiles maps each driver to its DDL file in schemaFS.
var schemaFiles = map[string]string{
	DriverSQLite:   "schema/sqlite.sql",
	DriverPostgres: "schema/postgres.sql",
}

// EnsureSchema creates any missing tables and indexes.
//
// Every statement is CREATE ... IF NOT EXISTS, so it is safe to run on each
// startup. It never alters existing tables; schema changes to a deployed
// store are made out of band.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If the DDL cannot be read or a statement fails
func (db *DB) EnsureSchema(ctx context.Context) error {
	name, ok := schemaFiles[db.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.driver)
	}

	ddl, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading schema %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	for _, stmt := range splitStatements(string(ddl)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}

// splitStatements splits a DDL file on ";" and drops empty fragments.
// The schema files contain no string literals with semicolons.
func splitStatements(ddl string) []string {
	parts := strings.Split(ddl, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
