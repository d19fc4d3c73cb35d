// Package database provides relational store connectivity for the gateway.
//
// This package manages:
//   - Connections to SQLite (mattn/go-sqlite3) or PostgreSQL (pgx)
//   - Placeholder rebinding so callers always write ? placeholders
//   - Insert-with-generated-id via RETURNING
//   - Transactions (BeginTx, WithTx)
//   - Idempotent schema bootstrap from embedded DDL
//
// All statements are parameterised. Driver errors are wrapped and returned
// to the caller; nothing in this package retries.
//
// Usage:
//
//	db, err := database.Open(database.Config{Driver: "sqlite3", Path: "./data/akuaponik.db"})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.EnsureSchema(ctx); err != nil {
//	    return err
//	}
package database
