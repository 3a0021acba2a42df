// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import "github.com/danielhkuo/westminster/models"

// Tally sums ballot weights per choice, then adds each non-playable
// party's seats, less its rebels, to that party's NPC position.
func Tally(d *models.Division, seats SeatLedger) models.Tally {
	var t models.Tally
	if d == nil {
		return t
	}

	for _, b := range d.Votes {
		t.Add(b.Choice, b.Weight)
	}

	for party, choice := range d.NpcVotes {
		if seats.IsPlayable(party) {
			continue
		}
		bloc := seats.SeatsOf(party) - d.RebelsByParty[party]
		if bloc < 0 {
			bloc = 0
		}
		t.Add(choice, bloc)
	}

	return t
}

// Resolve turns totals into an outcome. A tie is reported, never broken.
func Resolve(t models.Tally) models.Outcome {
	switch {
	case t.Aye > t.No:
		return models.OutcomePassed
	case t.No > t.Aye:
		return models.OutcomeFailed
	default:
		return models.OutcomeTied
	}
}

// DivisionOutcome is the Speaker's ruling when one exists, else the tally's verdict.
func DivisionOutcome(d *models.Division, seats SeatLedger) models.Outcome {
	if d != nil && d.Status == models.DivisionResolvedBySpeaker {
		return d.SpeakerOutcome
	}
	return Resolve(Tally(d, seats))
}
