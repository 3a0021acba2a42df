// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import "github.com/danielhkuo/westminster/models"

// SeatLedger is a read-only projection of the party roster.
// Unknown parties have zero seats and are not playable.
type SeatLedger struct {
	parties map[string]models.Party
	order   []string
}

// NewSeatLedger builds a ledger from the roster's parties, keeping their order.
func NewSeatLedger(parties []models.Party) SeatLedger {
	l := SeatLedger{parties: make(map[string]models.Party, len(parties))}
	for _, p := range parties {
		if p.Seats < 0 {
			p.Seats = 0
		}
		if _, dup := l.parties[p.Name]; !dup {
			l.order = append(l.order, p.Name)
		}
		l.parties[p.Name] = p
	}
	return l
}

// SeatsOf returns the party's seat count, or 0 for an unknown party.
func (l SeatLedger) SeatsOf(party string) int {
	return l.parties[party].Seats
}

// IsPlayable reports whether the party's members vote individually.
func (l SeatLedger) IsPlayable(party string) bool {
	return l.parties[party].Playable
}

// AutoAbstains reports whether the party abstains by convention.
func (l SeatLedger) AutoAbstains(party string) bool {
	return l.parties[party].AutoAbstain
}

// Known reports whether the party is on the roster.
func (l SeatLedger) Known(party string) bool {
	_, ok := l.parties[party]
	return ok
}

// Parties returns the parties in roster order.
func (l SeatLedger) Parties() []models.Party {
	out := make([]models.Party, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.parties[name])
	}
	return out
}
