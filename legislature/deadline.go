// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"time"

	"github.com/danielhkuo/westminster/models"
)

// SimClock maps real instants onto the simulated calendar.
// Every DaysPerMonth real days after Epoch advance the calendar one month.
type SimClock struct {
	Epoch        time.Time
	Start        models.SimDate
	DaysPerMonth int
}

// At returns the simulated month/year in effect at t.
func (c SimClock) At(t time.Time) models.SimDate {
	if c.DaysPerMonth <= 0 || !t.After(c.Epoch) {
		return c.Start
	}
	monthLen := time.Duration(c.DaysPerMonth) * 24 * time.Hour
	return c.Start.AddMonths(int(t.Sub(c.Epoch) / monthLen))
}

// SimDeadlinePassed reports whether the simulated clock is past deadline.
// The deadline month itself still counts as open.
func SimDeadlinePassed(deadline, now models.SimDate) bool {
	return now.After(deadline)
}

// DeadlinePassed checks both the wall-clock and simulated deadlines of d.
func DeadlinePassed(d *models.Division, now time.Time, sim models.SimDate) bool {
	if d == nil {
		return false
	}
	if d.ClosesAt != nil && !now.Before(*d.ClosesAt) {
		return true
	}
	if d.ClosesAtSim != nil && SimDeadlinePassed(*d.ClosesAtSim, sim) {
		return true
	}
	return false
}

// Turnout lists who a division waits for before it may close early.
type Turnout struct {
	Voters     []string
	NpcParties []string
}

// ExpectedTurnout is every member holding weight plus every non-playable
// party with seats that does not abstain by convention.
func ExpectedTurnout(seats SeatLedger, weights map[string]int) Turnout {
	var t Turnout
	for name, w := range weights {
		if w > 0 {
			t.Voters = append(t.Voters, name)
		}
	}
	for _, p := range seats.Parties() {
		if p.Playable || p.AutoAbstain || p.Seats <= 0 {
			continue
		}
		t.NpcParties = append(t.NpcParties, p.Name)
	}
	return t
}

// FullTurnout reports whether every expected voter has a ballot and every
// expected NPC party has an allocation.
func FullTurnout(d *models.Division, expected Turnout) bool {
	if d == nil || len(expected.Voters)+len(expected.NpcParties) == 0 {
		return false
	}
	for _, name := range expected.Voters {
		if _, ok := d.Votes[name]; !ok {
			return false
		}
	}
	for _, party := range expected.NpcParties {
		if _, ok := d.NpcVotes[party]; !ok {
			return false
		}
	}
	return true
}

// ShouldAutoClose reports whether an open division must close now.
func ShouldAutoClose(d *models.Division, now time.Time, sim models.SimDate, expected Turnout) bool {
	if d == nil || d.Status != models.DivisionOpen {
		return false
	}
	return DeadlinePassed(d, now, sim) || FullTurnout(d, expected)
}
