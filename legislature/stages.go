// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"strings"
	"time"

	"github.com/danielhkuo/westminster/models"
)

// stageMonths is how long each stage lasts, in simulated months from entry.
var stageMonths = map[models.Stage]int{
	models.StageFirstReading:  1,
	models.StageSecondReading: 2,
	models.StageReportStage:   1,
	models.StageReportDebate:  2,
	models.StageFinalDivision: 1,
}

// maxAdvanceSteps bounds AdvanceAll; each step moves strictly forward.
const maxAdvanceSteps = 64

// NewBill introduces legislation by author at the current simulated date.
// Government bills skip First Reading; motions go straight to a division.
func (c *Chamber) NewBill(id string, kind models.SubjectKind, title, author string, articles []string, government bool) (*models.Bill, bool) {
	ch, ok := c.byName[author]
	if !ok || !ch.Active || strings.TrimSpace(title) == "" {
		return nil, false
	}
	if kind != models.SubjectBill && kind != models.SubjectMotion {
		return nil, false
	}

	b := &models.Bill{
		ID:         id,
		Kind:       kind,
		Title:      strings.TrimSpace(title),
		Author:     author,
		Party:      ch.Party,
		Articles:   append([]string(nil), articles...),
		Status:     models.BillInProgress,
		Amendments: []models.Amendment{},
		CreatedAt:  c.Now,
	}

	start := models.StageFirstReading
	switch {
	case kind == models.SubjectMotion:
		start = models.StageFinalDivision
	case government && holdsOffice(ch):
		start = models.StageSecondReading
	}
	c.enterStage(b, start, c.Sim)
	return b, true
}

func holdsOffice(ch models.Character) bool {
	switch ch.Role {
	case models.RoleLeader, models.RoleOfficeHolder, models.RoleLeaderOfTheHouse:
		return true
	}
	return false
}

// enterStage moves b into stage as of entry and attaches the final division.
func (c *Chamber) enterStage(b *models.Bill, stage models.Stage, entry models.SimDate) {
	b.Stage = stage
	b.StageStartedSim = entry
	b.StageDeadlineSim = entry.AddMonths(stageMonths[stage])

	if stage == models.StageFinalDivision && b.Division == nil {
		d := NewDivision(c.NewID(), b.Kind, b.ID, c.Now)
		deadline := b.StageDeadlineSim
		d.ClosesAtSim = &deadline
		b.Division = d
	}
}

// AdvanceOnce applies at most one automatic transition to b and reports
// whether anything changed. Callers loop until it returns false.
func (c *Chamber) AdvanceOnce(b *models.Bill) bool {
	if b == nil || b.Status.Settled() {
		return false
	}

	if c.closeAmendmentDivisions(b) {
		return true
	}

	if b.Stage != models.StageFinalDivision {
		if !SimDeadlinePassed(b.StageDeadlineSim, c.Sim) {
			return false
		}
		next := models.Stages[b.Stage.Index()+1]
		// The next stage begins the month after the old deadline, so a
		// long idle period is replayed one stage at a time.
		c.enterStage(b, next, b.StageDeadlineSim.AddMonths(1))
		return true
	}

	return c.settleFinalDivision(b)
}

// AdvanceAll repeats AdvanceOnce until no transition applies and returns
// the number of steps taken.
func (c *Chamber) AdvanceAll(b *models.Bill) int {
	steps := 0
	for steps < maxAdvanceSteps && c.AdvanceOnce(b) {
		steps++
	}
	return steps
}

func (c *Chamber) settleFinalDivision(b *models.Bill) bool {
	d := b.Division
	if d == nil {
		c.enterStage(b, models.StageFinalDivision, c.Sim)
		return true
	}

	switch d.Status {
	case models.DivisionOpen:
		if c.Paused(b) {
			return false
		}
		return c.AutoClose(d)
	case models.DivisionClosed, models.DivisionResolvedBySpeaker:
	default:
		return false
	}

	switch c.Outcome(d) {
	case models.OutcomePassed:
		if b.Kind == models.SubjectMotion {
			b.Status = models.BillPassed
		} else {
			b.Status = models.BillAwaitingAssent
		}
		return true
	case models.OutcomeFailed:
		b.Status = models.BillFailed
		return true
	}

	// Tied with no ruling: pending unless a grace period is configured.
	if c.Rules.TieGraceMonths > 0 && d.ClosesAtSim != nil &&
		SimDeadlinePassed(d.ClosesAtSim.AddMonths(c.Rules.TieGraceMonths), c.Sim) {
		b.Status = models.BillFailed
		return true
	}
	return false
}

// Tied reports whether b's final division is closed on a tie awaiting a ruling.
func (c *Chamber) Tied(b *models.Bill) bool {
	if b == nil || b.Division == nil || b.Division.Status != models.DivisionClosed {
		return false
	}
	return c.Outcome(b.Division) == models.OutcomeTied
}

// RefuseReading lets the Leader of the House end a bill at First Reading.
func (c *Chamber) RefuseReading(b *models.Bill, actor string) bool {
	if b == nil || b.Status != models.BillInProgress || b.Stage != models.StageFirstReading {
		return false
	}
	ch, ok := c.byName[actor]
	if !ok || !ch.Active || ch.Role != models.RoleLeaderOfTheHouse {
		return false
	}
	b.Status = models.BillFailed
	return true
}

// CastBillVote records actor's ballot on b's final division. Votes are
// refused while any amendment on b is in its own division.
func (c *Chamber) CastBillVote(b *models.Bill, actor string, choice models.Choice) bool {
	if b == nil || b.Status != models.BillInProgress || c.Paused(b) {
		return false
	}
	return c.Vote(b.Division, actor, choice)
}

// CloseBillDivision ends voting on b's final division before its deadline.
// A paused division cannot be closed.
func (c *Chamber) CloseBillDivision(b *models.Bill) bool {
	if b == nil || b.Status != models.BillInProgress || c.Paused(b) {
		return false
	}
	return c.Close(b.Division)
}

// SetRealDeadline gives b's open final division a wall-clock deadline on
// top of its simulated one. The deadline must be after the chamber's now.
func (c *Chamber) SetRealDeadline(b *models.Bill, at time.Time) bool {
	if b == nil || b.Status != models.BillInProgress || b.Division == nil ||
		b.Division.Status != models.DivisionOpen || !at.After(c.Now) {
		return false
	}
	at = at.UTC()
	b.Division.ClosesAt = &at
	return true
}

// BreakTie applies the Speaker's ruling to a tied final division.
func (c *Chamber) BreakTie(b *models.Bill, outcome models.Outcome) bool {
	if !c.Tied(b) {
		return false
	}
	return ResolveBySpeaker(b.Division, outcome)
}

// GrantAssent turns a bill awaiting assent into law and relabels it an Act.
func (c *Chamber) GrantAssent(b *models.Bill) bool {
	if b == nil || b.Status != models.BillAwaitingAssent {
		return false
	}
	b.Status = models.BillPassed
	b.Title = ActTitle(b.Title)
	return true
}

// ActTitle renames "X Bill" to "X Act".
func ActTitle(title string) string {
	if strings.HasSuffix(title, " Bill") {
		return strings.TrimSuffix(title, " Bill") + " Act"
	}
	if strings.HasSuffix(title, " Act") {
		return title
	}
	return title + " Act"
}
