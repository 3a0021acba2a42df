// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/westminster/auth"
	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/legislature"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/models"
	"github.com/danielhkuo/westminster/store"
)

// maxConflictRetries bounds reload-and-retry loops on store.ErrConflict.
const maxConflictRetries = 10

// rejection is an engine refusal, reported to the client as-is.
type rejection struct {
	status  int
	message string
}

func (r *rejection) Error() string { return r.message }

func reject(status int, message string) error {
	return &rejection{status: status, message: message}
}

// engine holds what every handler needs to build a Chamber snapshot.
type engine struct {
	store *store.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func newEngine(db *sql.DB, cfg cliparse.Config) engine {
	return engine{
		store: store.New(db, cfg.DatabaseType),
		cfg:   cfg,
		now:   time.Now,
	}
}

// chamber snapshots the roster at the current real and simulated time.
func (e *engine) chamber(ctx context.Context) (*legislature.Chamber, error) {
	parties, roster, err := e.store.LoadRoster(ctx)
	if err != nil {
		return nil, err
	}
	now := e.now().UTC()
	return legislature.NewChamber(parties, roster, e.cfg.Rules(), now, e.cfg.Clock().At(now)), nil
}

// loadBill returns a fresh chamber and bill with every pending automatic
// transition applied and saved.
func (e *engine) loadBill(ctx context.Context, id string) (*legislature.Chamber, *models.Bill, error) {
	c, err := e.chamber(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := e.store.LoadBill(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if steps := c.AdvanceAll(b); steps > 0 {
		if err := e.store.SaveBill(ctx, b); err != nil {
			return nil, nil, err
		}
		slog.Info("bill advanced", "bill_id", b.ID, "steps", steps, "stage", b.Stage, "status", b.Status)
	}
	return c, b, nil
}

// mutateBill reloads the bill and applies fn until the save goes through
// without a conflict. fn returns a rejection to stop without saving.
func (e *engine) mutateBill(ctx context.Context, id string, fn func(c *legislature.Chamber, b *models.Bill) error) (*legislature.Chamber, *models.Bill, error) {
	var c *legislature.Chamber
	var b *models.Bill
	err := retry(ctx, func() error {
		var err error
		if c, b, err = e.loadBill(ctx, id); err != nil {
			return err
		}
		if err := fn(c, b); err != nil {
			return err
		}
		if err := e.store.SaveBill(ctx, b); err != nil {
			return err
		}
		// Settle whatever the change unlocked, e.g. an auto-close.
		if c.AdvanceAll(b) > 0 {
			if err := e.store.SaveBill(ctx, b); err != nil && !errors.Is(err, store.ErrConflict) {
				return err
			}
		}
		return nil
	})
	return c, b, err
}

// castBallot records actor's vote on a division of the bill chosen by pick.
func (e *engine) castBallot(ctx context.Context, r *http.Request, id, actor string, pick func(c *legislature.Chamber, b *models.Bill) (*models.Division, error)) (*models.Bill, error) {
	ipHash := auth.HashIP(middleware.GetClientIP(r), e.cfg.CharacterTokenSalt)

	var b *models.Bill
	err := retry(ctx, func() error {
		c, loaded, err := e.loadBill(ctx, id)
		if err != nil {
			return err
		}
		b = loaded
		d, err := pick(c, b)
		if err != nil {
			return err
		}
		if err := e.store.CastBallot(ctx, d, actor, d.Votes[actor], ipHash); err != nil {
			return err
		}
		if c.AdvanceAll(b) > 0 {
			if err := e.store.SaveBill(ctx, b); err != nil && !errors.Is(err, store.ErrConflict) {
				return err
			}
		}
		return nil
	})
	return b, err
}

// retry runs fn again while it reports a concurrent update.
func retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = fn(); !errors.Is(err, store.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Debug("retrying after concurrent update", "attempt", attempt+1)
	}
	return err
}

// writeError maps engine, store and auth errors onto HTTP responses.
func writeError(w http.ResponseWriter, err error, what string) {
	var rej *rejection
	switch {
	case errors.As(err, &rej):
		middleware.ErrorResponse(w, rej.status, rej.message)
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Concurrent update, try again")
	default:
		slog.Error("request failed", "what", what, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// requireCharacter authenticates the acting character from
// X-Character and X-Character-Token.
func (e *engine) requireCharacter(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.Header.Get("X-Character")
	token := r.Header.Get("X-Character-Token")
	if name == "" || token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Character and X-Character-Token headers required")
		return "", false
	}
	if err := auth.ValidateCharacterToken(name, token, e.cfg.CharacterTokenSalt); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid character token")
		return "", false
	}
	return name, true
}

// requireModerator checks X-Moderator-Key.
func (e *engine) requireModerator(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-Moderator-Key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Moderator-Key header required")
		return false
	}
	if err := auth.ValidateModeratorKey(key, e.cfg.ModeratorKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid moderator key")
		return false
	}
	return true
}

// billView builds the public representation of b.
func billView(c *legislature.Chamber, b *models.Bill) models.BillResponse {
	resp := models.BillResponse{
		Bill:    *b,
		Paused:  c.Paused(b),
		SimDate: c.Sim,
	}
	// Open divisions are shown at current weights.
	resp.Bill.Division = c.Live(b.Division)
	if len(b.Amendments) > 0 {
		resp.Bill.Amendments = make([]models.Amendment, len(b.Amendments))
		for i, a := range b.Amendments {
			a.Division = c.Live(a.Division)
			resp.Bill.Amendments[i] = a
		}
	}
	if b.Division != nil {
		tally := c.Tally(b.Division)
		resp.Tally = &tally
		if b.Division.Status != models.DivisionOpen {
			outcome := c.Outcome(b.Division)
			resp.Outcome = &outcome
		}
	}
	return resp
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, store.ErrNotFound)
}
