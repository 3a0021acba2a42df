// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A dotenv file (default .env, -env to change) is loaded first if it exists;
it never overrides variables already set in the environment.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: database connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - ModeratorKeySalt: Secret for the moderator key HMAC (required)
  - CharacterTokenSalt: Secret for character token HMACs (required)
  - RosterPath: optional YAML roster seeded at startup
  - SettlingDays: days a backbencher counts as new (default: 14)
  - TieGraceMonths: simulated months before a tie fails (default: 0, never)
  - SimEpoch, SimStart, DaysPerSimMonth: the simulated calendar

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-roster           Roster YAML path
	--moderator-salt  Moderator key salt
	--character-salt  Character token salt
	--settling-days   Settling period
	--tie-grace       Tie grace months
	--sim-epoch       Calendar epoch (RFC3339)
	--sim-start       Simulated month at the epoch (YYYY-MM)
	--sim-days        Real days per simulated month

Operator commands:

	-reset                 Drop every table before creating the schema
	-print-moderator-key   Print the X-Moderator-Key value and exit
	-character-token NAME  Print NAME's X-Character-Token and exit

The print commands need the salts but no database.

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	ROSTER_PATH          → -roster
	MODERATOR_KEY_SALT   → --moderator-salt
	CHARACTER_TOKEN_SALT → --character-salt
	SETTLING_DAYS        → --settling-days
	TIE_GRACE_MONTHS     → --tie-grace
	SIM_EPOCH            → --sim-epoch
	SIM_START            → --sim-start
	SIM_DAYS_PER_MONTH   → --sim-days

CLI flags take precedence over environment variables.

# Engine Settings

Config converts into the engine's types:

	rules := cfg.Rules()   // legislature.Rules
	clock := cfg.Clock()   // legislature.SimClock
	sim := clock.At(time.Now())
*/
package cliparse
