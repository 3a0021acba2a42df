// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/westminster/auth"
	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/db"
	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/store"
)

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("file:westminster_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := sql.Open("sqlite", name)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore wraps SetupTestDB in a store
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), "sqlite")
}

// GetTestConfig returns a standard test configuration. The simulated
// calendar reads 05/1997 at the epoch and advances one month per day.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       "sqlite",
		ModeratorKeySalt:   "test-moderator-salt",
		CharacterTokenSalt: "test-character-salt",
		SettlingDays:       14,
		SimEpoch:           Epoch,
		SimStart:           models.SimDate{Month: 5, Year: 1997},
		DaysPerSimMonth:    1,
	}
}

// Epoch is the real time at which the test calendar starts
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SimMonth returns a real time inside the nth simulated month after the epoch
func SimMonth(n int) time.Time {
	return Epoch.Add(time.Duration(n)*24*time.Hour + time.Hour)
}

// TestParties is a small chamber: two playable parties, a non-playable
// bloc and the Speaker.
func TestParties() []models.Party {
	return []models.Party{
		{Name: "Labour", Seats: 330, Playable: true},
		{Name: "Conservative", Seats: 300, Playable: true},
		{Name: "SNP", Seats: 20},
		{Name: "Speaker", Seats: 1, AutoAbstain: true},
	}
}

// TestRoster has a leader and a backbencher on each side plus the Leader
// of the House. Everyone joined well before the epoch.
func TestRoster() []models.Character {
	joined := Epoch.AddDate(0, -2, 0)
	member := func(name, party, role string, offset int) models.Character {
		return models.Character{
			Name:     name,
			Party:    party,
			Role:     role,
			Active:   true,
			JoinedAt: joined.Add(time.Duration(offset) * time.Minute),
		}
	}
	return []models.Character{
		member("Blair", "Labour", models.RoleLeader, 0),
		member("Cook", "Labour", models.RoleLeaderOfTheHouse, 1),
		member("Benn", "Labour", models.RoleBackbencher, 2),
		member("Hague", "Conservative", models.RoleLeader, 3),
		member("Clarke", "Conservative", models.RoleBackbencher, 4),
	}
}

// SeedRoster imports TestParties and TestRoster
func SeedRoster(t *testing.T, s *store.Store) {
	t.Helper()
	if err := s.ImportRoster(context.Background(), TestParties(), TestRoster()); err != nil {
		t.Fatalf("Failed to seed roster: %v", err)
	}
}

// CharacterHeaders returns the headers that authenticate as name
func CharacterHeaders(cfg cliparse.Config, name string) map[string]string {
	return map[string]string{
		"X-Character":       name,
		"X-Character-Token": auth.GenerateCharacterToken(name, cfg.CharacterTokenSalt),
	}
}

// ModeratorHeaders returns the headers that authenticate a moderator
func ModeratorHeaders(cfg cliparse.Config) map[string]string {
	return map[string]string{
		"X-Moderator-Key": auth.GenerateModeratorKey(cfg.ModeratorKeySalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
