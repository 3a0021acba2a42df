// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Westminster API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - RosterHandler: Roster import, weights, absences
  - BillHandler: Bills and motions, votes, moderator and Speaker actions
  - AmendmentHandler: Report Stage amendments and their divisions

Handlers are created via constructor functions that accept *sql.DB and Config:

	billHandler := handlers.NewBillHandler(db, cfg)

# Request Flow

Every request snapshots the roster into a legislature.Chamber at the current
real and simulated time, loads the bill and applies any transitions that
have fallen due (deadlines passed while nobody was looking). The engine
operation then runs in memory and the store writes it back.

Responses show open divisions at current weights. NPC votes may carry the
rebel counts in the same request; if the NPC votes complete turnout the
division closes with those rebels already applied.

Writes are optimistic. A store.ErrConflict means another request changed
the bill or division first; the handler reloads and tries again, up to
maxConflictRetries times.

# Authentication

Characters send X-Character and X-Character-Token. Moderators and the
Speaker send X-Moderator-Key. Missing headers are 401, bad ones 403.

# Error Responses

  - 400: malformed JSON or invalid enum values
  - 401/403: authentication
  - 404: bill, amendment or character not found
  - 409: the chamber refused the action in its current state
  - 500: database errors
*/
package handlers
