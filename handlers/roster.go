// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/legislature"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/roster"
)

// maxDocumentBytes caps an imported state document.
const maxDocumentBytes = 4 << 20

type RosterHandler struct {
	engine
}

func NewRosterHandler(db *sql.DB, cfg cliparse.Config) *RosterHandler {
	return &RosterHandler{engine: newEngine(db, cfg)}
}

// Import handles POST /roster/import
func (h *RosterHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !h.requireModerator(w, r) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	r.Body.Close()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	doc, err := roster.ValidateDocument(body)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.ImportRoster(r.Context(), doc.Parliament.Parties, doc.Players); err != nil {
		writeError(w, err, "Roster")
		return
	}

	slog.Info("roster imported", "parties", len(doc.Parliament.Parties), "characters", len(doc.Players))

	middleware.JSONResponse(w, http.StatusOK, models.ImportRosterResponse{
		Parties:    len(doc.Parliament.Parties),
		Characters: len(doc.Players),
	})
}

// Weights handles GET /roster/weights
func (h *RosterHandler) Weights(w http.ResponseWriter, r *http.Request) {
	c, err := h.chamber(r.Context())
	if err != nil {
		writeError(w, err, "Roster")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WeightsResponse{
		Weights: c.Weights,
		SimDate: c.Sim,
	})
}

// SetAbsence handles POST /characters/{name}/absence
func (h *RosterHandler) SetAbsence(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	actor, ok := h.requireCharacter(w, r)
	if !ok {
		return
	}
	if actor != name {
		middleware.ErrorResponse(w, http.StatusForbidden, "Characters can only set their own absence")
		return
	}

	var req models.AbsenceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := h.chamber(r.Context())
	if err != nil {
		writeError(w, err, "Roster")
		return
	}
	ch, ok := c.Character(name)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Character not found")
		return
	}

	delegate := req.DelegatedTo
	if req.Absent && delegate != nil && !legislature.ValidDelegate(c.Roster, ch, *delegate) {
		middleware.ErrorResponse(w, http.StatusConflict, "Delegate must be a present, active member of the same party")
		return
	}

	if err := h.store.SetAbsence(r.Context(), name, req.Absent, delegate); err != nil {
		writeError(w, err, "Character")
		return
	}

	slog.Info("absence updated", "character", name, "absent", req.Absent)

	// Report the weights that result
	c, err = h.chamber(r.Context())
	if err != nil {
		writeError(w, err, "Roster")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.WeightsResponse{
		Weights: c.Weights,
		SimDate: c.Sim,
	})
}
