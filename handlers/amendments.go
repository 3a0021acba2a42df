// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/legislature"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/models"
)

type AmendmentHandler struct {
	engine
}

func NewAmendmentHandler(db *sql.DB, cfg cliparse.Config) *AmendmentHandler {
	return &AmendmentHandler{engine: newEngine(db, cfg)}
}

// findAmendment returns the amendment named in the path, or a 404 error.
func findAmendment(b *models.Bill, id string) (*models.Amendment, error) {
	a := legislature.FindAmendment(b, id)
	if a == nil {
		return nil, notFound("amendment " + id)
	}
	return a, nil
}

// Propose handles POST /bills/{id}/amendments
func (h *AmendmentHandler) Propose(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}

	var req models.ProposeAmendmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	kind, err := models.ParseAmendmentType(req.Type)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "type must be replace, insert or delete")
		return
	}
	if kind != models.AmendDelete && req.Text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	var amendmentID string
	_, _, err = h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		a, ok := c.ProposeAmendment(b, actor, req.ArticleNumber, kind, req.Text)
		if !ok {
			return reject(http.StatusConflict, "Amendments are tabled at Report Stage against an existing article")
		}
		amendmentID = a.ID
		return nil
	})
	if err != nil {
		writeError(w, err, "Bill")
		return
	}

	slog.Info("amendment proposed", "bill_id", r.PathValue("id"), "amendment_id", amendmentID, "proposer", actor)

	middleware.JSONResponse(w, http.StatusCreated, models.AmendmentResponse{
		AmendmentID: amendmentID,
		Status:      models.AmendmentProposed,
	})
}

// Support handles POST /bills/{id}/amendments/{aid}/support
func (h *AmendmentHandler) Support(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}
	aid := r.PathValue("aid")

	var status models.AmendmentStatus
	_, _, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		a, err := findAmendment(b, aid)
		if err != nil {
			return err
		}
		if !c.SupportAmendment(b, aid, actor) {
			return reject(http.StatusConflict, "Only party leaders can support a proposed amendment")
		}
		status = a.Status
		return nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("amendment supported", "amendment_id", aid, "leader", actor)
	middleware.JSONResponse(w, http.StatusOK, models.AmendmentResponse{AmendmentID: aid, Status: status})
}

// Accept handles POST /bills/{id}/amendments/{aid}/accept
func (h *AmendmentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}
	aid := r.PathValue("aid")

	_, _, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if _, err := findAmendment(b, aid); err != nil {
			return err
		}
		if !c.AcceptAmendment(b, aid, actor) {
			return reject(http.StatusConflict, "Only the bill's author can accept a proposed amendment")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("amendment accepted", "amendment_id", aid, "by", actor)
	middleware.JSONResponse(w, http.StatusOK, models.AmendmentResponse{AmendmentID: aid, Status: models.AmendmentAccepted})
}

// Refuse handles POST /bills/{id}/amendments/{aid}/refuse
func (h *AmendmentHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}
	aid := r.PathValue("aid")

	var status models.AmendmentStatus
	_, _, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		if _, err := findAmendment(b, aid); err != nil {
			return err
		}
		var ok bool
		if status, ok = c.RefuseAmendment(b, aid, actor); !ok {
			return reject(http.StatusConflict, "Only the bill's author can refuse a proposed amendment")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("amendment refused", "amendment_id", aid, "by", actor, "status", status)
	middleware.JSONResponse(w, http.StatusOK, models.AmendmentResponse{AmendmentID: aid, Status: status})
}

// CastVote handles POST /bills/{id}/amendments/{aid}/votes
func (h *AmendmentHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}
	aid := r.PathValue("aid")

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

	var tally models.Tally
	_, err = h.castBallot(r.Context(), r, r.PathValue("id"), actor, func(c *legislature.Chamber, b *models.Bill) (*models.Division, error) {
		a, err := findAmendment(b, aid)
		if err != nil {
			return nil, err
		}
		if a.Status != models.AmendmentInDivision || a.Division == nil || a.Division.Status != models.DivisionOpen {
			return nil, reject(http.StatusConflict, "Amendment is not in an open division")
		}
		if !c.CastAmendmentVote(b, aid, actor, choice) {
			return nil, reject(http.StatusForbidden, "Character cannot vote in this division")
		}
		tally = c.Tally(a.Division)
		return a.Division, nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("amendment vote cast", "amendment_id", aid, "actor", actor, "choice", choice)
	middleware.JSONResponse(w, http.StatusOK, tally)
}

// SetNpcVotes handles POST /bills/{id}/amendments/{aid}/npc-votes
func (h *AmendmentHandler) SetNpcVotes(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}
	aid := r.PathValue("aid")

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
		a, err := findAmendment(b, aid)
		if err != nil {
			return err
		}
		if a.Status != models.AmendmentInDivision {
			return reject(http.StatusConflict, "Amendment is not in division")
		}
		if len(req.Rebels) > 0 && !c.Rebellions(a.Division, req.Rebels) {
			return reject(http.StatusConflict, "Rebel counts need an open division and must be between 0 and the party's seats")
		}
		if !c.NpcVotes(a.Division, votes) {
			return reject(http.StatusConflict, "NPC votes need an open division and known non-playable parties")
		}
		return nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("amendment npc votes set", "amendment_id", aid, "parties", len(votes))
	middleware.JSONResponse(w, http.StatusOK, billView(c, b))
}

// SpeakerDecision handles POST /bills/{id}/amendments/{aid}/speaker-decision
func (h *AmendmentHandler) SpeakerDecision(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}
	aid := r.PathValue("aid")

	var req models.AmendmentDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var status models.AmendmentStatus
	_, _, err := h.mutateBill(r.Context(), r.PathValue("id"), func(c *legislature.Chamber, b *models.Bill) error {
		a, err := findAmendment(b, aid)
		if err != nil {
			return err
		}
		if !c.RuleOnAmendment(b, aid, req.Accept) {
			return reject(http.StatusConflict, "The Speaker only rules on an amendment in division")
		}
		status = a.Status
		return nil
	})
	if err != nil {
		writeError(w, err, "Amendment")
		return
	}

	slog.Info("speaker ruled on amendment", "amendment_id", aid, "accept", req.Accept)
	middleware.JSONResponse(w, http.StatusOK, models.AmendmentResponse{AmendmentID: aid, Status: status})
}
