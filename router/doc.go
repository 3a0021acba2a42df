// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Westminster chamber API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Roster:

	POST /roster/import             - Replace parties and characters (moderator)
	GET  /roster/weights            - Effective vote weights right now
	POST /characters/{name}/absence - Mark self absent, optionally delegating

Bills and motions (character headers unless noted):

	POST /bills                     - Introduce a bill or motion
	GET  /bills/{id}                - Bill, tally and outcome (public)
	POST /bills/{id}/advance        - Apply due stage transitions (public)
	POST /bills/{id}/refuse-reading - Leader of the House refuses First Reading
	POST /bills/{id}/votes          - Vote in the final division

Moderator and Speaker (X-Moderator-Key):

	POST /bills/{id}/npc-votes        - Set non-playable bloc votes
	POST /bills/{id}/rebellions       - Set rebel counts
	POST /bills/{id}/deadline         - Set a wall-clock closing time
	POST /bills/{id}/close            - Close the final division early
	POST /bills/{id}/speaker-decision - Break a tie
	POST /bills/{id}/assent           - Royal assent

Amendments:

	POST /bills/{id}/amendments                         - Table at Report Stage
	POST /bills/{id}/amendments/{aid}/support           - Party leader support
	POST /bills/{id}/amendments/{aid}/accept            - Author accepts
	POST /bills/{id}/amendments/{aid}/refuse            - Author refuses
	POST /bills/{id}/amendments/{aid}/votes             - Vote in its division
	POST /bills/{id}/amendments/{aid}/npc-votes         - NPC blocs and rebels (moderator)
	POST /bills/{id}/amendments/{aid}/speaker-decision  - Speaker rules (moderator)

# Handler Initialization

The router creates handler instances with dependency injection:

	rosterHandler := handlers.NewRosterHandler(db, cfg)
	billHandler := handlers.NewBillHandler(db, cfg)
	amendmentHandler := handlers.NewAmendmentHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
