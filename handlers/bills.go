// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/westminster/auth"
	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/legislature"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/models"
)

type BillHandler struct {
	engine
}

func NewBillHandler(db *sql.DB, cfg cliparse.Config) *BillHandler {
	return &BillHandler{engine: newEngine(db, cfg)}
}

// CreateBill handles POST /bills
func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}

	var req models.CreateBillRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	kind, err := models.ParseSubjectKind(req.Kind)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be bill or motion")
		return
	}
	if kind == models.SubjectBill && len(req.Articles) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a bill needs at least one article")
		return
	}
	if kind == models.SubjectBill && req.ClosesAt != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "closes_at only applies to motions")
		return
	}

	billID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate bill ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create bill")
		return
	}

	c, err := h.chamber(r.Context())
	if err != nil {
		writeError(w, err, "Roster")
		return
	}

	b, ok := c.NewBill(billID, kind, req.Title, actor, req.Articles, req.Government)
	if !ok {
		middleware.ErrorResponse(w, http.StatusConflict, "Only active characters can introduce legislation")
		return
	}
	if req.ClosesAt != nil && !c.SetRealDeadline(b, *req.ClosesAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "closes_at must be in the future")
		return
	}
	b.Slug = auth.GenerateSlug(billID, h.cfg.CharacterTokenSalt)

	if err := h.store.CreateBill(r.Context(), b); err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("bill introduced", "bill_id", b.ID, "kind", b.Kind, "author", actor, "stage", b.Stage)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateBillResponse{
		BillID: b.ID,
		Slug:   b.Slug,
		Stage:  b.Stage,
	})
}

// GetBill handles GET /bills/{id}
func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var c *legislature.Chamber
	var b *models.Bill
	err := retry(r.Context(), func() error {
		var err error
		c, b, err = h.loadBill(r.Context(), id)
		return err
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// Advance handles POST /bills/{id}/advance
func (h *BillHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var steps int
	var b *models.Bill
	err := retry(r.Context(), func() error {
		c, err := h.chamber(r.Context())
		if err != nil {
			return err
		}
		if b, err = h.store.LoadBill(r.Context(), id); err != nil {
			return err
		}
		if steps = c.AdvanceAll(b); steps > 0 {
			return h.store.SaveBill(r.Context(), b)
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	if steps > 0 {
		slog.Info("bill advanced", "bill_id", b.ID, "steps", steps, "stage", b.Stage, "status", b.Status)
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdvanceResponse{
		Steps:  steps,
		Stage:  b.Stage,
		Status: b.Status,
	})
}

// RefuseReading handles POST /bills/{id}/refuse-reading
func (h *BillHandler) RefuseReading(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !c.RefuseReading(b, actor) {
			return reject(http.StatusConflict, "Only the Leader of the House can refuse a bill at First Reading")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("reading refused", "bill_id", b.ID, "by", actor)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// CastVote handles POST /bills/{id}/votes
func (h *BillHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	choice, err := models.ParseChoice(req.Choice)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice must be aye, no or abstain")
		return
	}

	var c *legislature.Chamber
	b, err := h.castBallot(r.Context(), r, r.PathValue("id"), actor, func(cc *legislature.Chamber, b *models.Bill) (*models.Division, error) {
		c = cc
		switch {
		case b.Division == nil || b.Division.Status != models.DivisionOpen:
			return nil, reject(http.StatusConflict, "No division is open on this bill")
		case c.Paused(b):
			return nil, reject(http.StatusConflict, "Voting is paused while an amendment is in division")
		}
		if !c.CastBillVote(b, actor, choice) {
			return nil, reject(http.StatusForbidden, "Character cannot vote in this division")
		}
		return b.Division, nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("vote cast", "bill_id", b.ID, "division_id", b.Division.ID, "actor", actor, "choice", choice)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// SetNpcVotes handles POST /bills/{id}/npc-votes
func (h *BillHandler) SetNpcVotes(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	var req models.NpcVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	votes, err := npcChoices(req.Votes)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		// Rebels go in first; the NPC votes may complete turnout.
		if len(req.Rebels) > 0 && !c.Rebellions(b.Division, req.Rebels) {
			return reject(http.StatusConflict, "Rebel counts need an open division and must be between 0 and the party's seats")
		}
		if !c.NpcVotes(b.Division, votes) {
			return reject(http.StatusConflict, "NPC votes need an open division and known non-playable parties")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("npc votes set", "bill_id", b.ID, "parties", len(votes), "rebel_parties", len(req.Rebels))
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// npcChoices parses a party-to-choice map from a request body.
func npcChoices(raw map[string]string) (map[string]models.Choice, error) {
	votes := make(map[string]models.Choice, len(raw))
	for party, v := range raw {
		choice, err := models.ParseChoice(v)
		if err != nil {
			return nil, fmt.Errorf("vote for %s must be aye, no or abstain", party)
		}
		votes[party] = choice
	}
	return votes, nil
}

// SetRebellions handles POST /bills/{id}/rebellions
func (h *BillHandler) SetRebellions(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	var req models.RebellionsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !c.Rebellions(b.Division, req.Rebels) {
			return reject(http.StatusConflict, "Rebel counts need an open division and must be between 0 and the party's seats")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("rebellions set", "bill_id", b.ID, "parties", len(req.Rebels))
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// SetDeadline handles POST /bills/{id}/deadline
func (h *BillHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	var req models.DeadlineRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ClosesAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "closes_at is required")
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !req.ClosesAt.After(c.Now) {
			return reject(http.StatusBadRequest, "closes_at must be in the future")
		}
		if !c.SetRealDeadline(b, req.ClosesAt) {
			return reject(http.StatusConflict, "No open division on this bill")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("division deadline set", "bill_id", b.ID, "closes_at", req.ClosesAt)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// CloseDivision handles POST /bills/{id}/close
func (h *BillHandler) CloseDivision(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !c.CloseBillDivision(b) {
			return reject(http.StatusConflict, "No open, unpaused division on this bill")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("division closed", "bill_id", b.ID, "status", b.Status)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// SpeakerDecision handles POST /bills/{id}/speaker-decision
func (h *BillHandler) SpeakerDecision(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	var req models.SpeakerDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	outcome := models.Outcome(req.Outcome)
	if outcome != models.OutcomePassed && outcome != models.OutcomeFailed {
		middleware.ErrorResponse(w, http.StatusBadRequest, "outcome must be passed or failed")
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !c.BreakTie(b, outcome) {
			return reject(http.StatusConflict, "The Speaker only rules on a closed, tied division")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("speaker ruled", "bill_id", b.ID, "outcome", outcome)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// GrantAssent handles POST /bills/{id}/assent
func (h *BillHandler) GrantAssent(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	c, b, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if !c.GrantAssent(b) {
			return reject(http.StatusConflict, "Bill is not awaiting assent")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("royal assent", "bill_id", b.ID, "title", b.Title)
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}
