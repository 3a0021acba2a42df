// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/westminster/models"
)

// CreateBill inserts a freshly introduced bill, and its division when it
// starts at Final Division. On success the in-memory versions are set.
func (s *Store) CreateBill(ctx context.Context, b *models.Bill) error {
	articles, err := json.Marshal(b.Articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if b.Division != nil {
			if err := s.saveDivision(ctx, tx, b.Division); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO bill (
				id, slug, kind, title, author, party, articles, stage,
				stage_started_month, stage_started_year, stage_deadline_month, stage_deadline_year,
				status, division_id, version, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, $15)
		`), b.ID, b.Slug, b.Kind, b.Title, b.Author, b.Party, string(articles), b.Stage,
			b.StageStartedSim.Month, b.StageStartedSim.Year,
			b.StageDeadlineSim.Month, b.StageDeadlineSim.Year,
			b.Status, divisionID(b.Division), b.CreatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert bill: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.Version = 1
	if b.Division != nil {
		b.Division.Version = 1
	}
	return nil
}

// LoadBill reads a bill by ID or slug, with its amendments and divisions.
func (s *Store) LoadBill(ctx context.Context, idOrSlug string) (*models.Bill, error) {
	var b models.Bill
	var articles string
	var mainDivision sql.NullString

	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, slug, kind, title, author, party, articles, stage,
			stage_started_month, stage_started_year, stage_deadline_month, stage_deadline_year,
			status, division_id, version, created_at
		FROM bill
		WHERE id = $1 OR slug = $1
	`), idOrSlug).Scan(&b.ID, &b.Slug, &b.Kind, &b.Title, &b.Author, &b.Party, &articles, &b.Stage,
		&b.StageStartedSim.Month, &b.StageStartedSim.Year,
		&b.StageDeadlineSim.Month, &b.StageDeadlineSim.Year,
		&b.Status, &mainDivision, &b.Version, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query bill: %w", err)
	}
	if err := json.Unmarshal([]byte(articles), &b.Articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}

	amendmentDivisions, err := s.loadAmendments(ctx, &b)
	if err != nil {
		return nil, err
	}

	if mainDivision.Valid {
		if b.Division, err = s.loadDivision(ctx, mainDivision.String); err != nil {
			return nil, err
		}
	}
	for i, id := range amendmentDivisions {
		if id == "" {
			continue
		}
		if b.Amendments[i].Division, err = s.loadDivision(ctx, id); err != nil {
			return nil, err
		}
	}

	return &b, nil
}

// loadAmendments fills b.Amendments and returns each one's division ID.
func (s *Store) loadAmendments(ctx context.Context, b *models.Bill) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, article_number, type, text, proposer, status, supporters, division_id
		FROM amendment
		WHERE bill_id = $1
		ORDER BY position
	`), b.ID)
	if err != nil {
		return nil, fmt.Errorf("query amendments: %w", err)
	}
	defer rows.Close()

	b.Amendments = []models.Amendment{}
	var divisions []string
	for rows.Next() {
		var a models.Amendment
		var supporters string
		var divID sql.NullString
		if err := rows.Scan(&a.ID, &a.ArticleNumber, &a.Type, &a.Text, &a.Proposer, &a.Status, &supporters, &divID); err != nil {
			return nil, fmt.Errorf("scan amendment: %w", err)
		}
		if err := json.Unmarshal([]byte(supporters), &a.Supporters); err != nil {
			return nil, fmt.Errorf("decode supporters: %w", err)
		}
		b.Amendments = append(b.Amendments, a)
		divisions = append(divisions, divID.String)
	}
	return divisions, rows.Err()
}

func (s *Store) loadDivision(ctx context.Context, id string) (*models.Division, error) {
	d := &models.Division{
		Votes:         make(map[string]models.Ballot),
		RebelsByParty: make(map[string]int),
		NpcVotes:      make(map[string]models.Choice),
	}
	var closesAt sql.NullTime
	var closesMonth, closesYear sql.NullInt64
	var speaker sql.NullString

	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, subject_kind, subject_id, status, opened_at, closes_at,
			closes_at_month, closes_at_year, speaker_outcome, version
		FROM division
		WHERE id = $1
	`), id).Scan(&d.ID, &d.Subject, &d.SubjectID, &d.Status, &d.OpenedAt, &closesAt,
		&closesMonth, &closesYear, &speaker, &d.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("division %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query division: %w", err)
	}
	if closesAt.Valid {
		d.ClosesAt = &closesAt.Time
	}
	if closesMonth.Valid && closesYear.Valid {
		d.ClosesAtSim = &models.SimDate{Month: int(closesMonth.Int64), Year: int(closesYear.Int64)}
	}
	d.SpeakerOutcome = models.Outcome(speaker.String)

	if err := s.loadBallots(ctx, d); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.q(`SELECT party, choice FROM npc_vote WHERE division_id = $1`), id)
	if err != nil {
		return nil, fmt.Errorf("query npc votes: %w", err)
	}
	for rows.Next() {
		var party string
		var choice models.Choice
		if err := rows.Scan(&party, &choice); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan npc vote: %w", err)
		}
		d.NpcVotes[party] = choice
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, s.q(`SELECT party, rebels FROM rebellion WHERE division_id = $1`), id)
	if err != nil {
		return nil, fmt.Errorf("query rebellions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var party string
		var n int
		if err := rows.Scan(&party, &n); err != nil {
			return nil, fmt.Errorf("scan rebellion: %w", err)
		}
		d.RebelsByParty[party] = n
	}
	return d, rows.Err()
}

func (s *Store) loadBallots(ctx context.Context, d *models.Division) error {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT actor, party, choice, weight, cast_at FROM ballot WHERE division_id = $1
	`), d.ID)
	if err != nil {
		return fmt.Errorf("query ballots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actor string
		var b models.Ballot
		if err := rows.Scan(&actor, &b.Party, &b.Choice, &b.Weight, &b.At); err != nil {
			return fmt.Errorf("scan ballot: %w", err)
		}
		d.Votes[actor] = b
	}
	return rows.Err()
}

// SaveBill writes every change the engine made to b. The bill row and each
// existing division are compared on version; any mismatch aborts the whole
// write with ErrConflict.
func (s *Store) SaveBill(ctx context.Context, b *models.Bill) error {
	articles, err := json.Marshal(b.Articles)
	if err != nil {
		return fmt.Errorf("encode articles: %w", err)
	}
	divisions := billDivisions(b)

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE bill SET
				title = $1, articles = $2, stage = $3,
				stage_started_month = $4, stage_started_year = $5,
				stage_deadline_month = $6, stage_deadline_year = $7,
				status = $8, division_id = $9, version = version + 1
			WHERE id = $10 AND version = $11
		`), b.Title, string(articles), b.Stage,
			b.StageStartedSim.Month, b.StageStartedSim.Year,
			b.StageDeadlineSim.Month, b.StageDeadlineSim.Year,
			b.Status, divisionID(b.Division), b.ID, b.Version)
		if err != nil {
			return fmt.Errorf("update bill: %w", err)
		}
		if err := expectOne(res); err != nil {
			return err
		}

		for _, d := range divisions {
			if err := s.saveDivision(ctx, tx, d); err != nil {
				return err
			}
		}

		for i, a := range b.Amendments {
			supporters, err := json.Marshal(a.Supporters)
			if err != nil {
				return fmt.Errorf("encode supporters: %w", err)
			}
			_, err = tx.ExecContext(ctx, s.q(`
				INSERT INTO amendment (id, bill_id, position, article_number, type, text, proposer, status, supporters, division_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (id) DO UPDATE SET
					position = excluded.position,
					article_number = excluded.article_number,
					status = excluded.status,
					supporters = excluded.supporters,
					division_id = excluded.division_id
			`), a.ID, b.ID, i, a.ArticleNumber, a.Type, a.Text, a.Proposer, a.Status, string(supporters), divisionID(a.Division))
			if err != nil {
				return fmt.Errorf("upsert amendment %s: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.Version++
	for _, d := range divisions {
		d.Version++
	}
	return nil
}

// saveDivision inserts a new division (version 0) or compare-and-swaps an
// existing one, then rewrites its ballots, NPC votes and rebels.
func (s *Store) saveDivision(ctx context.Context, tx *sql.Tx, d *models.Division) error {
	var closesMonth, closesYear *int
	if d.ClosesAtSim != nil {
		closesMonth, closesYear = &d.ClosesAtSim.Month, &d.ClosesAtSim.Year
	}
	var closesAt *time.Time
	if d.ClosesAt != nil {
		t := d.ClosesAt.UTC()
		closesAt = &t
	}
	var speaker *string
	if d.SpeakerOutcome != "" {
		o := string(d.SpeakerOutcome)
		speaker = &o
	}

	if d.Version == 0 {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO division (id, subject_kind, subject_id, status, opened_at, closes_at,
				closes_at_month, closes_at_year, speaker_outcome, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
		`), d.ID, d.Subject, d.SubjectID, d.Status, d.OpenedAt.UTC(), closesAt, closesMonth, closesYear, speaker)
		if err != nil {
			return fmt.Errorf("insert division: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE division SET
				status = $1, closes_at = $2, closes_at_month = $3, closes_at_year = $4,
				speaker_outcome = $5, version = version + 1
			WHERE id = $6 AND version = $7
		`), d.Status, closesAt, closesMonth, closesYear, speaker, d.ID, d.Version)
		if err != nil {
			return fmt.Errorf("update division: %w", err)
		}
		if err := expectOne(res); err != nil {
			return err
		}
	}

	for actor, b := range d.Votes {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO ballot (division_id, actor, party, choice, weight, cast_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (division_id, actor) DO UPDATE SET
				party = excluded.party,
				choice = excluded.choice,
				weight = excluded.weight,
				cast_at = excluded.cast_at
		`), d.ID, actor, b.Party, b.Choice, b.Weight, b.At.UTC())
		if err != nil {
			return fmt.Errorf("upsert ballot: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM npc_vote WHERE division_id = $1`), d.ID); err != nil {
		return fmt.Errorf("clear npc votes: %w", err)
	}
	for party, choice := range d.NpcVotes {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO npc_vote (division_id, party, choice) VALUES ($1, $2, $3)
		`), d.ID, party, choice)
		if err != nil {
			return fmt.Errorf("insert npc vote: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM rebellion WHERE division_id = $1`), d.ID); err != nil {
		return fmt.Errorf("clear rebellions: %w", err)
	}
	for party, n := range d.RebelsByParty {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO rebellion (division_id, party, rebels) VALUES ($1, $2, $3)
		`), d.ID, party, n)
		if err != nil {
			return fmt.Errorf("insert rebellion: %w", err)
		}
	}
	return nil
}

// CastBallot upserts one ballot while d is still open at the version the
// caller read. ipHash may be empty.
func (s *Store) CastBallot(ctx context.Context, d *models.Division, actor string, ballot models.Ballot, ipHash string) error {
	var hash *string
	if ipHash != "" {
		hash = &ipHash
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE division SET version = version + 1
			WHERE id = $1 AND version = $2 AND status = $3
		`), d.ID, d.Version, models.DivisionOpen)
		if err != nil {
			return fmt.Errorf("bump division: %w", err)
		}
		if err := expectOne(res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, s.q(`
			INSERT INTO ballot (division_id, actor, party, choice, weight, cast_at, ip_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (division_id, actor) DO UPDATE SET
				party = excluded.party,
				choice = excluded.choice,
				weight = excluded.weight,
				cast_at = excluded.cast_at,
				ip_hash = excluded.ip_hash
		`), d.ID, actor, ballot.Party, ballot.Choice, ballot.Weight, ballot.At.UTC(), hash)
		if err != nil {
			return fmt.Errorf("upsert ballot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.Version++
	return nil
}

// billDivisions lists the main division and every amendment division of b.
func billDivisions(b *models.Bill) []*models.Division {
	var out []*models.Division
	if b.Division != nil {
		out = append(out, b.Division)
	}
	for i := range b.Amendments {
		if d := b.Amendments[i].Division; d != nil {
			out = append(out, d)
		}
	}
	return out
}

func divisionID(d *models.Division) *string {
	if d == nil {
		return nil
	}
	return &d.ID
}
