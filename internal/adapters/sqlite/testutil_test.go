// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/fitout/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedClient inserts a bare client row and returns its ID.
func seedClient(t *testing.T, db *sql.DB, id, stageID string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO clients (id, name, stage_id) VALUES (?, ?, ?)", id, "Client "+id, stageID)
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return id
}

// seedLedger inserts an empty ledger for a client.
func seedLedger(t *testing.T, db *sql.DB, clientID, budget string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO ledgers (client_id, allocated_budget, opened_at) VALUES (?, ?, ?)",
		clientID, budget, "2024-01-01T09:00:00Z",
	)
	if err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
