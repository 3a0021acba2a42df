// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"time"

	"github.com/danielhkuo/westminster/models"
)

// AllocateWeights computes every active character's effective voting weight.
//
// The base pass apportions each playable party's seats among its active
// members; the absence pass then moves absent members' base weight to a
// single delegate. Delegates are judged against the base roster, so a
// transfer never chains through a second absentee.
func AllocateWeights(roster []models.Character, seats SeatLedger, settling time.Duration, now time.Time) map[string]int {
	base := BaseWeights(roster, seats, settling, now)
	return applyAbsences(roster, base)
}

// BaseWeights is the allocation before absence delegation.
func BaseWeights(roster []models.Character, seats SeatLedger, settling time.Duration, now time.Time) map[string]int {
	weights := make(map[string]int)

	var partyOrder []string
	members := make(map[string][]models.Character)
	for _, c := range roster {
		if !c.Active {
			continue
		}
		weights[c.Name] = 0
		if !seats.IsPlayable(c.Party) {
			continue
		}
		if _, seen := members[c.Party]; !seen {
			partyOrder = append(partyOrder, c.Party)
		}
		members[c.Party] = append(members[c.Party], c)
	}

	for _, party := range partyOrder {
		var split []models.Character
		newcomers := 0
		for _, c := range members[party] {
			if isNewBackbencher(c, settling, now) {
				weights[c.Name] = 1
				newcomers++
				continue
			}
			split = append(split, c)
		}

		remaining := seats.SeatsOf(party) - newcomers
		if remaining <= 0 {
			continue
		}

		if len(split) == 0 {
			if leader := partyLeader(members[party]); leader != "" {
				weights[leader] += remaining
			}
			continue
		}

		share := remaining / len(split)
		for _, c := range split {
			weights[c.Name] = share
		}

		if rem := remaining % len(split); rem > 0 {
			target := split[0].Name
			for _, c := range split {
				if c.Role == models.RoleLeader {
					target = c.Name
					break
				}
			}
			weights[target] += rem
		}
	}

	return weights
}

// applyAbsences moves each absent member's base weight to their delegate.
func applyAbsences(roster []models.Character, base map[string]int) map[string]int {
	final := make(map[string]int, len(base))
	for name, w := range base {
		final[name] = w
	}

	for _, c := range roster {
		if !c.Active || !c.Absent || base[c.Name] <= 0 {
			continue
		}
		final[c.Name] -= base[c.Name]
		if delegate, ok := delegateFor(roster, c); ok {
			final[delegate] += base[c.Name]
		}
	}

	return final
}

// delegateFor returns who receives an absent member's weight.
// A leader's weight goes to their chosen delegate, everyone else's to the leader.
func delegateFor(roster []models.Character, absent models.Character) (string, bool) {
	if absent.Role == models.RoleLeader {
		if absent.DelegatedTo == nil {
			return "", false
		}
		if !ValidDelegate(roster, absent, *absent.DelegatedTo) {
			return "", false
		}
		return *absent.DelegatedTo, true
	}

	for _, c := range roster {
		if c.Party == absent.Party && c.Role == models.RoleLeader && c.Active {
			if ValidDelegate(roster, absent, c.Name) {
				return c.Name, true
			}
			return "", false
		}
	}
	return "", false
}

// ValidDelegate reports whether target may hold from's weight: another
// active, present member of the same party.
func ValidDelegate(roster []models.Character, from models.Character, target string) bool {
	if target == "" || target == from.Name {
		return false
	}
	for _, c := range roster {
		if c.Name == target {
			return c.Active && !c.Absent && c.Party == from.Party
		}
	}
	return false
}

func isNewBackbencher(c models.Character, settling time.Duration, now time.Time) bool {
	if c.Role == models.RoleNewBackbencher {
		return true
	}
	if c.Role != models.RoleBackbencher || settling <= 0 || c.JoinedAt.IsZero() {
		return false
	}
	return now.Sub(c.JoinedAt) < settling
}

func partyLeader(members []models.Character) string {
	for _, c := range members {
		if c.Role == models.RoleLeader {
			return c.Name
		}
	}
	return ""
}
