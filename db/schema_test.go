// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T, name string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func tableCount(t *testing.T, conn *sql.DB) int {
	t.Helper()
	n := 0
	for _, table := range Tables {
		var found int
		err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&found)
		if err != nil {
			t.Fatalf("Failed to inspect %s: %v", table, err)
		}
		n += found
	}
	return n
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openMemory(t, "schema_idempotent")

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema run %d: %v", i+1, err)
		}
	}
	if got := tableCount(t, conn); got != len(Tables) {
		t.Errorf("Expected %d tables, got %d", len(Tables), got)
	}
}

func TestDropSchema_Reset(t *testing.T) {
	conn := openMemory(t, "schema_reset")
	if err := CreateSchema(conn); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`INSERT INTO party (name, seats, playable, auto_abstain) VALUES ('Labour', 418, true, false)`); err != nil {
		t.Fatalf("Failed to seed party: %v", err)
	}

	if err := DropSchema(conn); err != nil {
		t.Fatalf("DropSchema: %v", err)
	}
	if got := tableCount(t, conn); got != 0 {
		t.Errorf("Expected every table dropped, %d remain", got)
	}

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema after reset: %v", err)
	}
	var parties int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM party`).Scan(&parties); err != nil {
		t.Fatal(err)
	}
	if parties != 0 {
		t.Errorf("Expected an empty roster after reset, got %d parties", parties)
	}

	// Dropping twice is harmless
	if err := DropSchema(conn); err != nil {
		t.Errorf("Second DropSchema: %v", err)
	}
}
