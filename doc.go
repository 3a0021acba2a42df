// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Westminster chamber server.

Westminster runs the House of Commons side of a parliamentary role-playing
game: weighted divisions, bills moving through their readings on a
simulated calendar, Report Stage amendments and Speaker rulings.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=westminster.db MODERATOR_KEY_SALT=... CHARACTER_TOKEN_SALT=... go run .

Or with flags, against PostgreSQL:

	go run . -p 3318 -t postgres -d "postgres://..." -roster roster.yaml

A .env file in the working directory is read first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - MODERATOR_KEY_SALT (--moderator-salt): Secret for the moderator key
  - CHARACTER_TOKEN_SALT (--character-salt): Secret for character tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - ROSTER_PATH (-roster): YAML roster seeded at startup
  - SIM_EPOCH, SIM_START, SIM_DAYS_PER_MONTH: the simulated calendar
  - SETTLING_DAYS, TIE_GRACE_MONTHS: chamber conventions

# Architecture

  - legislature: the engine (weights, divisions, stages, amendments)
  - store: persistence with optimistic version checks
  - roster: state document validation and YAML seeding
  - handlers: HTTP request handlers (roster, bills, amendments)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, recovery, JSON helpers
  - models: Domain, request and response types
  - auth: Moderator keys, character tokens, IDs
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
