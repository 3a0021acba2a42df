// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"time"

	"github.com/danielhkuo/westminster/models"
)

// NewDivision opens an empty division on a bill, motion or amendment.
func NewDivision(id string, subject models.SubjectKind, subjectID string, openedAt time.Time) *models.Division {
	return &models.Division{
		ID:            id,
		Subject:       subject,
		SubjectID:     subjectID,
		Status:        models.DivisionOpen,
		Votes:         make(map[string]models.Ballot),
		RebelsByParty: make(map[string]int),
		NpcVotes:      make(map[string]models.Choice),
		OpenedAt:      openedAt,
	}
}

// CastVote records actor's ballot, replacing any earlier one.
// It is rejected when the division is not open.
func CastVote(d *models.Division, actor string, ballot models.Ballot) bool {
	if d == nil || d.Status != models.DivisionOpen || actor == "" {
		return false
	}
	if _, err := models.ParseChoice(string(ballot.Choice)); err != nil {
		return false
	}
	if ballot.Weight < 0 {
		return false
	}
	if d.Votes == nil {
		d.Votes = make(map[string]models.Ballot)
	}
	d.Votes[actor] = ballot
	return true
}

// SetNpcVotes replaces the whole NPC bloc allocation.
func SetNpcVotes(d *models.Division, votes map[string]models.Choice) bool {
	if d == nil || d.Status != models.DivisionOpen {
		return false
	}
	next := make(map[string]models.Choice, len(votes))
	for party, choice := range votes {
		if _, err := models.ParseChoice(string(choice)); err != nil {
			return false
		}
		next[party] = choice
	}
	d.NpcVotes = next
	return true
}

// SetRebellions replaces the whole rebel count map. Counts must be non-negative.
func SetRebellions(d *models.Division, rebels map[string]int) bool {
	if d == nil || d.Status != models.DivisionOpen {
		return false
	}
	next := make(map[string]int, len(rebels))
	for party, n := range rebels {
		if n < 0 {
			return false
		}
		next[party] = n
	}
	d.RebelsByParty = next
	return true
}

// Close moves an open division to closed. It succeeds exactly once.
func Close(d *models.Division) bool {
	if d == nil || d.Status != models.DivisionOpen {
		return false
	}
	d.Status = models.DivisionClosed
	return true
}

// ResolveBySpeaker records a procedural ruling that bypasses the tally.
// Only passed or failed can be ruled, and only once.
func ResolveBySpeaker(d *models.Division, outcome models.Outcome) bool {
	if d == nil || d.Status == models.DivisionResolvedBySpeaker {
		return false
	}
	if outcome != models.OutcomePassed && outcome != models.OutcomeFailed {
		return false
	}
	d.Status = models.DivisionResolvedBySpeaker
	d.SpeakerOutcome = outcome
	return true
}
