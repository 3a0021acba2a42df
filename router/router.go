// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/handlers"
	"github.com/danielhkuo/westminster/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	rosterHandler := handlers.NewRosterHandler(db, cfg)
	billHandler := handlers.NewBillHandler(db, cfg)
	amendmentHandler := handlers.NewAmendmentHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Roster (import is moderator-only)
	mux.HandleFunc("POST /roster/import", middleware.WithLogging(rosterHandler.Import))
	mux.HandleFunc("GET /roster/weights", middleware.WithLogging(rosterHandler.Weights))
	mux.HandleFunc("POST /characters/{name}/absence", middleware.WithLogging(rosterHandler.SetAbsence))

	// Bills and motions
	mux.HandleFunc("POST /bills", middleware.WithLogging(billHandler.CreateBill))
	mux.HandleFunc("GET /bills/{id}", middleware.WithLogging(billHandler.GetBill))
	mux.HandleFunc("POST /bills/{id}/advance", middleware.WithLogging(billHandler.Advance))
	mux.HandleFunc("POST /bills/{id}/refuse-reading", middleware.WithLogging(billHandler.RefuseReading))
	mux.HandleFunc("POST /bills/{id}/votes", middleware.WithLogging(billHandler.CastVote))

	// Moderator and Speaker actions on the main division
	mux.HandleFunc("POST /bills/{id}/npc-votes", middleware.WithLogging(billHandler.SetNpcVotes))
	mux.HandleFunc("POST /bills/{id}/rebellions", middleware.WithLogging(billHandler.SetRebellions))
	mux.HandleFunc("POST /bills/{id}/deadline", middleware.WithLogging(billHandler.SetDeadline))
	mux.HandleFunc("POST /bills/{id}/close", middleware.WithLogging(billHandler.CloseDivision))
	mux.HandleFunc("POST /bills/{id}/speaker-decision", middleware.WithLogging(billHandler.SpeakerDecision))
	mux.HandleFunc("POST /bills/{id}/assent", middleware.WithLogging(billHandler.GrantAssent))

	// Report Stage amendments
	mux.HandleFunc("POST /bills/{id}/amendments", middleware.WithLogging(amendmentHandler.Propose))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/support", middleware.WithLogging(amendmentHandler.Support))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/accept", middleware.WithLogging(amendmentHandler.Accept))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/refuse", middleware.WithLogging(amendmentHandler.Refuse))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/votes", middleware.WithLogging(amendmentHandler.CastVote))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/npc-votes", middleware.WithLogging(amendmentHandler.SetNpcVotes))
	mux.HandleFunc("POST /bills/{id}/amendments/{aid}/speaker-decision", middleware.WithLogging(amendmentHandler.SpeakerDecision))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("westminster API v1"))
	})

	return mux
}
