// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to types both PostgreSQL and SQLite accept; timestamps
// are always written by the application.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables lists every table in dependency order, children first.
var Tables = []string{
	"rebellion",
	"npc_vote",
	"ballot",
	"division",
	"amendment",
	"bill",
	"member",
	"party",
}

// DropSchema removes every table. Used by tests and re-seeding tools.
func DropSchema(db *sql.DB) error {
	for _, table := range Tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

const schema = `
-- Parties
CREATE TABLE IF NOT EXISTS party (
    name TEXT PRIMARY KEY,
    seats INTEGER NOT NULL CHECK (seats >= 0),
    playable BOOLEAN NOT NULL,
    auto_abstain BOOLEAN NOT NULL
);

-- Characters (roster)
CREATE TABLE IF NOT EXISTS member (
    name TEXT PRIMARY KEY,
    party TEXT NOT NULL,
    role TEXT NOT NULL,
    active BOOLEAN NOT NULL,
    absent BOOLEAN NOT NULL,
    delegated_to TEXT,
    joined_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_member_party ON member(party);

-- Bills and motions
CREATE TABLE IF NOT EXISTS bill (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL CHECK (kind IN ('bill', 'motion')),
    title TEXT NOT NULL,
    author TEXT NOT NULL,
    party TEXT NOT NULL,
    articles TEXT NOT NULL,
    stage TEXT NOT NULL,
    stage_started_month INTEGER NOT NULL,
    stage_started_year INTEGER NOT NULL,
    stage_deadline_month INTEGER NOT NULL,
    stage_deadline_year INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('in-progress', 'awaiting-assent', 'passed', 'failed')),
    division_id TEXT,
    version INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bill_status ON bill(status);

-- Amendments
CREATE TABLE IF NOT EXISTS amendment (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bill(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    article_number INTEGER NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('replace', 'insert', 'delete')),
    text TEXT NOT NULL,
    proposer TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('proposed', 'accepted', 'refused', 'in-division')),
    supporters TEXT NOT NULL,
    division_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_amendment_bill_id ON amendment(bill_id);

-- Divisions
CREATE TABLE IF NOT EXISTS division (
    id TEXT PRIMARY KEY,
    subject_kind TEXT NOT NULL CHECK (subject_kind IN ('bill', 'motion', 'amendment')),
    subject_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('open', 'closed', 'resolved-by-speaker')),
    opened_at TIMESTAMP NOT NULL,
    closes_at TIMESTAMP,
    closes_at_month INTEGER,
    closes_at_year INTEGER,
    speaker_outcome TEXT,
    version INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_division_subject ON division(subject_id);

-- Ballots, one per actor per division
CREATE TABLE IF NOT EXISTS ballot (
    division_id TEXT NOT NULL REFERENCES division(id) ON DELETE CASCADE,
    actor TEXT NOT NULL,
    party TEXT NOT NULL,
    choice TEXT NOT NULL CHECK (choice IN ('aye', 'no', 'abstain')),
    weight INTEGER NOT NULL CHECK (weight >= 0),
    cast_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    PRIMARY KEY (division_id, actor)
);

-- Moderator-entered bloc votes of non-playable parties
CREATE TABLE IF NOT EXISTS npc_vote (
    division_id TEXT NOT NULL REFERENCES division(id) ON DELETE CASCADE,
    party TEXT NOT NULL,
    choice TEXT NOT NULL CHECK (choice IN ('aye', 'no', 'abstain')),
    PRIMARY KEY (division_id, party)
);

-- Rebel counts subtracted from a bloc
CREATE TABLE IF NOT EXISTS rebellion (
    division_id TEXT NOT NULL REFERENCES division(id) ON DELETE CASCADE,
    party TEXT NOT NULL,
    rebels INTEGER NOT NULL CHECK (rebels >= 0),
    PRIMARY KEY (division_id, party)
);
`
