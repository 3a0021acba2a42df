// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package legislature is the division and stage engine.

Everything here is a synchronous function over an in-memory snapshot; it
never touches the database. The store package loads a snapshot, an
operation mutates it, and the store writes back only what changed.

# Seats and Weights

A SeatLedger projects the party roster. AllocateWeights turns the roster
into effective voting weights:

  - new backbenchers vote with weight 1
  - the rest of the party's seats are split evenly among the other members,
    with the remainder going to the leader (or the first member)
  - absent members hand their weight to one delegate: a leader to their
    chosen member, anyone else to the leader

# Divisions

A division records ballots, NPC bloc positions and rebel counts:

	d := legislature.NewDivision(id, models.SubjectBill, billID, now)
	legislature.CastVote(d, "Alice", ballot)   // last vote wins
	legislature.SetNpcVotes(d, npc)            // replaces the whole map
	legislature.Close(d)                       // exactly once

Tally adds ballot weights and NPC blocs (seats less rebels). Resolve
reports passed, failed or tied; it never breaks a tie.

While a division is open, Chamber.Tally counts each ballot at its
caster's current weight, so a member who goes absent after voting adds
nothing and their delegate carries the seats. Chamber.Close fixes the
weights at that moment and they no longer move.

# Chamber

A Chamber bundles the seat ledger, roster, weights, rules and clocks:

	ch := legislature.NewChamber(parties, roster, rules, now, clock.At(now))
	ch.CastBillVote(bill, "Alice", models.ChoiceAye)
	ch.AdvanceAll(bill)

# Stages

	first-reading (1) → second-reading (2) → report-stage (1)
	  → report-debate (2) → final-division (1)

Numbers are simulated months. Government bills start at second reading and
motions at the final division. A passed bill awaits assent; GrantAssent
makes it an Act.

# Amendments

Amendments are tabled at report stage. The author accepts them into the
text or refuses them; a refusal backed by two or more party leaders sends
the amendment to its own division, which pauses voting on the bill until
the Speaker rules. That division closes at its deadline or on full
turnout like any other.

Article numbers are 1-based. Once an amendment changes the text, every
pending amendment is renumbered to keep pointing at the same article; one
whose article was deleted can no longer be applied.

All rejected operations return false and leave state unchanged.
*/
package legislature
