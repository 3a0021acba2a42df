// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package legislature

import (
	"github.com/danielhkuo/westminster/models"
)

// minLeaderSupport is how many party leaders can force an amendment to a division.
const minLeaderSupport = 2

// amendmentMonths is the lifetime of an amendment's division.
const amendmentMonths = 1

// Paused reports whether any amendment on b is in its own division, which
// freezes voting on the bill's main division.
func (c *Chamber) Paused(b *models.Bill) bool {
	if b == nil {
		return false
	}
	for _, a := range b.Amendments {
		if a.Status == models.AmendmentInDivision {
			return true
		}
	}
	return false
}

// FindAmendment returns a pointer into b's amendment list.
func FindAmendment(b *models.Bill, id string) *models.Amendment {
	if b == nil {
		return nil
	}
	for i := range b.Amendments {
		if b.Amendments[i].ID == id {
			return &b.Amendments[i]
		}
	}
	return nil
}

// ProposeAmendment tables an amendment during Report Stage.
func (c *Chamber) ProposeAmendment(b *models.Bill, actor string, article int, kind models.AmendmentType, text string) (*models.Amendment, bool) {
	if b == nil || b.Status != models.BillInProgress || b.Stage != models.StageReportStage {
		return nil, false
	}
	ch, ok := c.byName[actor]
	if !ok || !ch.Active {
		return nil, false
	}
	if _, err := models.ParseAmendmentType(string(kind)); err != nil {
		return nil, false
	}
	if !articleInRange(b.Articles, article, kind) {
		return nil, false
	}
	if kind != models.AmendDelete && text == "" {
		return nil, false
	}

	b.Amendments = append(b.Amendments, models.Amendment{
		ID:            c.NewID(),
		ArticleNumber: article,
		Type:          kind,
		Text:          text,
		Proposer:      actor,
		Status:        models.AmendmentProposed,
		Supporters:    []string{},
	})
	return &b.Amendments[len(b.Amendments)-1], true
}

// SupportAmendment records a party leader's backing for their party.
func (c *Chamber) SupportAmendment(b *models.Bill, id, actor string) bool {
	a := FindAmendment(b, id)
	if a == nil || a.Status != models.AmendmentProposed {
		return false
	}
	ch, ok := c.byName[actor]
	if !ok || !ch.Active || ch.Role != models.RoleLeader {
		return false
	}
	for _, party := range a.Supporters {
		if party == ch.Party {
			return true
		}
	}
	a.Supporters = append(a.Supporters, ch.Party)
	return true
}

// AcceptAmendment lets the bill's author take a proposed amendment into the text.
func (c *Chamber) AcceptAmendment(b *models.Bill, id, actor string) bool {
	a := FindAmendment(b, id)
	if a == nil || a.Status != models.AmendmentProposed || actor != b.Author {
		return false
	}
	if !c.splice(b, a) {
		return false
	}
	a.Status = models.AmendmentAccepted
	return true
}

// RefuseAmendment is the author's refusal. With backing from at least two
// party leaders the amendment goes to its own division instead.
func (c *Chamber) RefuseAmendment(b *models.Bill, id, actor string) (models.AmendmentStatus, bool) {
	a := FindAmendment(b, id)
	if a == nil || a.Status != models.AmendmentProposed || actor != b.Author {
		return "", false
	}

	if distinct(a.Supporters) < minLeaderSupport {
		a.Status = models.AmendmentRefused
		return a.Status, true
	}

	d := NewDivision(c.NewID(), models.SubjectAmendment, a.ID, c.Now)
	deadline := c.Sim.AddMonths(amendmentMonths)
	d.ClosesAtSim = &deadline
	a.Division = d
	a.Status = models.AmendmentInDivision
	return a.Status, true
}

// CastAmendmentVote records a ballot on an amendment's division.
func (c *Chamber) CastAmendmentVote(b *models.Bill, id, actor string, choice models.Choice) bool {
	a := FindAmendment(b, id)
	if a == nil || a.Status != models.AmendmentInDivision {
		return false
	}
	return c.Vote(a.Division, actor, choice)
}

// RuleOnAmendment is the Speaker's procedural decision on an amendment in
// division. It does not consult the tally.
func (c *Chamber) RuleOnAmendment(b *models.Bill, id string, accept bool) bool {
	a := FindAmendment(b, id)
	if a == nil || a.Status != models.AmendmentInDivision {
		return false
	}
	if accept {
		if !c.splice(b, a) {
			return false
		}
		ResolveBySpeaker(a.Division, models.OutcomePassed)
		a.Status = models.AmendmentAccepted
		return true
	}
	ResolveBySpeaker(a.Division, models.OutcomeFailed)
	a.Status = models.AmendmentRefused
	return true
}

// closeAmendmentDivisions closes amendment divisions that are past their
// deadline or have full turnout. The amendment stays in division until the
// Speaker rules.
func (c *Chamber) closeAmendmentDivisions(b *models.Bill) bool {
	changed := false
	for i := range b.Amendments {
		a := &b.Amendments[i]
		if a.Status != models.AmendmentInDivision || a.Division == nil {
			continue
		}
		if c.AutoClose(a.Division) {
			changed = true
		}
	}
	return changed
}

// splice applies a's change to b's articles; article numbers are 1-based and
// an insert goes after the referenced article (0 inserts at the top).
// Pending amendments are renumbered to keep pointing at the same articles.
func (c *Chamber) splice(b *models.Bill, a *models.Amendment) bool {
	if !articleInRange(b.Articles, a.ArticleNumber, a.Type) {
		return false
	}
	n := a.ArticleNumber
	switch a.Type {
	case models.AmendReplace:
		b.Articles[n-1] = a.Text
	case models.AmendInsert:
		articles := make([]string, 0, len(b.Articles)+1)
		articles = append(articles, b.Articles[:n]...)
		articles = append(articles, a.Text)
		b.Articles = append(articles, b.Articles[n:]...)
	case models.AmendDelete:
		b.Articles = append(b.Articles[:n-1:n-1], b.Articles[n:]...)
	default:
		return false
	}
	renumber(b, a)
	return true
}

// renumber shifts the article references of b's pending amendments after
// applied changed the article list. An amendment that replaced or deleted an
// article that is now gone is left pointing at article 0, which no
// replace or delete can splice.
func renumber(b *models.Bill, applied *models.Amendment) {
	n := applied.ArticleNumber
	for i := range b.Amendments {
		a := &b.Amendments[i]
		if a.ID == applied.ID || !a.Status.Pending() {
			continue
		}
		switch applied.Type {
		case models.AmendInsert:
			if a.ArticleNumber > n {
				a.ArticleNumber++
			}
		case models.AmendDelete:
			switch {
			case a.ArticleNumber > n:
				a.ArticleNumber--
			case a.ArticleNumber == n && a.Type == models.AmendInsert:
				a.ArticleNumber = n - 1
			case a.ArticleNumber == n:
				a.ArticleNumber = 0
			}
		}
	}
}

func articleInRange(articles []string, n int, kind models.AmendmentType) bool {
	if kind == models.AmendInsert {
		return n >= 0 && n <= len(articles)
	}
	return n >= 1 && n <= len(articles)
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
