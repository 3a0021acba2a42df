// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
DropSchema removes every table in Tables, children first; the server's
-reset flag runs it before CreateSchema.
The same DDL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).

# Tables

  - party: Seat counts and playability
  - member: The character roster, with absence and delegation
  - bill: Bills and motions, their stage and simulated deadlines
  - amendment: Report Stage amendments, ordered by position
  - division: Votes on a bill, motion or amendment
  - ballot: One ballot per actor per division
  - npc_vote: Bloc votes for non-playable parties
  - rebellion: Rebel counts per party per division

# Relationships

	bill 1──* amendment
	bill 1──1 division (main, from Final Division)
	amendment 1──1 division (when contested)
	division 1──* ballot
	division 1──* npc_vote
	division 1──* rebellion

# Concurrency

bill and division both carry a version column. Writers compare and bump
it in the same statement; a zero row count means someone else got there
first.
*/
package db
