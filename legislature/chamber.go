// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/westminster/models"
)

// Rules are the chamber conventions that are configured rather than fixed.
type Rules struct {
	// SettlingPeriod is how long a backbencher counts as new after joining.
	SettlingPeriod time.Duration
	// TieGraceMonths, when positive, fails a tied final division that has
	// waited this many simulated months past its deadline without a ruling.
	// Zero leaves ties pending until the Speaker rules.
	TieGraceMonths int
}

// Chamber is one consistent snapshot of the roster and clocks that every
// engine operation runs against.
type Chamber struct {
	Seats   SeatLedger
	Roster  []models.Character
	Weights map[string]int
	Rules   Rules
	Now     time.Time
	Sim     models.SimDate

	// NewID names new divisions and amendments.
	NewID func() string

	byName map[string]models.Character
}

// NewChamber computes effective weights for the roster at now.
func NewChamber(parties []models.Party, roster []models.Character, rules Rules, now time.Time, sim models.SimDate) *Chamber {
	seats := NewSeatLedger(parties)
	c := &Chamber{
		Seats:   seats,
		Roster:  roster,
		Weights: AllocateWeights(roster, seats, rules.SettlingPeriod, now),
		Rules:   rules,
		Now:     now,
		Sim:     sim,
		NewID:   uuid.NewString,
		byName:  make(map[string]models.Character, len(roster)),
	}
	for _, ch := range roster {
		c.byName[ch.Name] = ch
	}
	return c
}

// Character looks up a roster entry by name.
func (c *Chamber) Character(name string) (models.Character, bool) {
	ch, ok := c.byName[name]
	return ch, ok
}

// WeightOf returns the effective weight of name, or 0 when unknown.
func (c *Chamber) WeightOf(name string) int {
	return c.Weights[name]
}

// Expected is the turnout that lets a division close early.
func (c *Chamber) Expected() Turnout {
	return ExpectedTurnout(c.Seats, c.Weights)
}

// BallotFor builds actor's ballot from the roster. Characters without
// weight, or outside a playable party, cannot vote.
func (c *Chamber) BallotFor(actor string, choice models.Choice) (models.Ballot, bool) {
	ch, ok := c.byName[actor]
	if !ok || !ch.Active || !c.Seats.IsPlayable(ch.Party) {
		return models.Ballot{}, false
	}
	weight := c.Weights[actor]
	if weight <= 0 {
		return models.Ballot{}, false
	}
	return models.Ballot{
		Party:  ch.Party,
		Choice: choice,
		Weight: weight,
		At:     c.Now,
	}, true
}

// Vote casts actor's ballot on d at their current effective weight.
func (c *Chamber) Vote(d *models.Division, actor string, choice models.Choice) bool {
	ballot, ok := c.BallotFor(actor, choice)
	if !ok {
		return false
	}
	return CastVote(d, actor, ballot)
}

// NpcVotes replaces d's NPC allocation. Every party must be a known
// non-playable party.
func (c *Chamber) NpcVotes(d *models.Division, votes map[string]models.Choice) bool {
	for party := range votes {
		if !c.Seats.Known(party) || c.Seats.IsPlayable(party) {
			return false
		}
	}
	return SetNpcVotes(d, votes)
}

// Rebellions replaces d's rebel counts. A party cannot have more rebels than seats.
func (c *Chamber) Rebellions(d *models.Division, rebels map[string]int) bool {
	for party, n := range rebels {
		if !c.Seats.Known(party) || n > c.Seats.SeatsOf(party) {
			return false
		}
	}
	return SetRebellions(d, rebels)
}

// AutoClose closes d when its deadline has passed or turnout is complete.
func (c *Chamber) AutoClose(d *models.Division) bool {
	if !ShouldAutoClose(d, c.Now, c.Sim, c.Expected()) {
		return false
	}
	return c.Close(d)
}

// Close fixes every ballot at its caster's current weight and closes d.
func (c *Chamber) Close(d *models.Division) bool {
	if d == nil || d.Status != models.DivisionOpen {
		return false
	}
	for actor, b := range d.Votes {
		b.Weight = c.Weights[actor]
		d.Votes[actor] = b
	}
	return Close(d)
}

// Live returns d as it would count right now. While d is open each ballot
// carries its caster's current effective weight, so weight that moved to a
// delegate after the ballot was cast is counted once, for the delegate.
// Closed divisions are returned unchanged.
func (c *Chamber) Live(d *models.Division) *models.Division {
	if d == nil || d.Status != models.DivisionOpen {
		return d
	}
	live := *d
	live.Votes = make(map[string]models.Ballot, len(d.Votes))
	for actor, b := range d.Votes {
		b.Weight = c.Weights[actor]
		live.Votes[actor] = b
	}
	return &live
}

// Tally sums d against this chamber's seat ledger and current weights.
func (c *Chamber) Tally(d *models.Division) models.Tally {
	return Tally(c.Live(d), c.Seats)
}

// Outcome resolves d against this chamber's seat ledger and current weights.
func (c *Chamber) Outcome(d *models.Division) models.Outcome {
	return DivisionOutcome(c.Live(d), c.Seats)
}
