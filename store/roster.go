// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/westminster/models"
)

// ImportRoster replaces every party and character with the given state.
// The imported document is authoritative, absences included.
func (s *Store) ImportRoster(ctx context.Context, parties []models.Party, roster []models.Character) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM member`); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM party`); err != nil {
			return fmt.Errorf("clear parties: %w", err)
		}

		for _, p := range parties {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO party (name, seats, playable, auto_abstain)
				VALUES ($1, $2, $3, $4)
			`), p.Name, p.Seats, p.Playable, p.AutoAbstain)
			if err != nil {
				return fmt.Errorf("insert party %s: %w", p.Name, err)
			}
		}

		for _, ch := range roster {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO member (name, party, role, active, absent, delegated_to, joined_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`), ch.Name, ch.Party, ch.Role, ch.Active, ch.Absent, ch.DelegatedTo, ch.JoinedAt.UTC())
			if err != nil {
				return fmt.Errorf("insert character %s: %w", ch.Name, err)
			}
		}
		return nil
	})
}

// LoadRoster returns all parties and characters. Characters come back in
// join order, which the weight split relies on for its tie-breaks.
func (s *Store) LoadRoster(ctx context.Context) ([]models.Party, []models.Character, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, seats, playable, auto_abstain FROM party ORDER BY name
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query parties: %w", err)
	}
	parties := []models.Party{}
	for rows.Next() {
		var p models.Party
		if err := rows.Scan(&p.Name, &p.Seats, &p.Playable, &p.AutoAbstain); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan party: %w", err)
		}
		parties = append(parties, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT name, party, role, active, absent, delegated_to, joined_at
		FROM member
		ORDER BY joined_at, name
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	roster := []models.Character{}
	for rows.Next() {
		var ch models.Character
		var delegatedTo sql.NullString
		if err := rows.Scan(&ch.Name, &ch.Party, &ch.Role, &ch.Active, &ch.Absent, &delegatedTo, &ch.JoinedAt); err != nil {
			return nil, nil, fmt.Errorf("scan character: %w", err)
		}
		if delegatedTo.Valid {
			ch.DelegatedTo = &delegatedTo.String
		}
		roster = append(roster, ch)
	}
	return parties, roster, rows.Err()
}

// SetAbsence records a character's absence and optional delegate.
func (s *Store) SetAbsence(ctx context.Context, name string, absent bool, delegatedTo *string) error {
	if !absent {
		delegatedTo = nil
	}
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE member SET absent = $1, delegated_to = $2 WHERE name = $3
	`), absent, delegatedTo, name)
	if err != nil {
		return fmt.Errorf("update absence: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
