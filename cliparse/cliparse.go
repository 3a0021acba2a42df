package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/westminster/legislature"
	"github.com/danielhkuo/westminster/models"
)

type Config struct {
	Port               int
	DatabaseURL        string
	DatabaseType       string
	ModeratorKeySalt   string
	CharacterTokenSalt string
	RosterPath         string

	SettlingDays    int
	TieGraceMonths  int
	SimEpoch        time.Time
	SimStart        models.SimDate
	DaysPerSimMonth int

	// Operator commands
	ResetSchema       bool
	PrintModeratorKey bool
	PrintTokenFor     string
}

// PrintOnly reports whether the process only prints credentials and exits.
func (c Config) PrintOnly() bool {
	return c.PrintModeratorKey || c.PrintTokenFor != ""
}

// Rules returns the chamber conventions configured for this server.
func (c Config) Rules() legislature.Rules {
	return legislature.Rules{
		SettlingPeriod: time.Duration(c.SettlingDays) * 24 * time.Hour,
		TieGraceMonths: c.TieGraceMonths,
	}
}

// Clock returns the simulated calendar configured for this server.
func (c Config) Clock() legislature.SimClock {
	return legislature.SimClock{
		Epoch:        c.SimEpoch,
		Start:        c.SimStart,
		DaysPerMonth: c.DaysPerSimMonth,
	}
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, simEpoch, simStart string

	fs := flag.NewFlagSet("westminster", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RosterPath, "roster", "", "YAML roster to seed at startup")
	fs.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.ModeratorKeySalt, "moderator-salt", "", "Moderator key salt (prefer env)")
	fs.StringVar(&cfg.CharacterTokenSalt, "character-salt", "", "Character token salt (prefer env)")

	// Simulation calendar
	fs.IntVar(&cfg.SettlingDays, "settling-days", -1, "Days a backbencher counts as new")
	fs.IntVar(&cfg.TieGraceMonths, "tie-grace", -1, "Simulated months before a tie fails (0 = never)")
	fs.IntVar(&cfg.DaysPerSimMonth, "sim-days", 0, "Real days per simulated month")
	fs.StringVar(&simEpoch, "sim-epoch", "", "Real date the simulated calendar starts (RFC3339)")
	fs.StringVar(&simStart, "sim-start", "", "Simulated month at the epoch (YYYY-MM)")

	// Operator commands
	fs.BoolVar(&cfg.ResetSchema, "reset", false, "Drop every table before creating the schema")
	fs.BoolVar(&cfg.PrintModeratorKey, "print-moderator-key", false, "Print the moderator key and exit")
	fs.StringVar(&cfg.PrintTokenFor, "character-token", "", "Print the named character's token and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" && !cfg.PrintOnly() {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.RosterPath == "" {
		cfg.RosterPath = os.Getenv("ROSTER_PATH")
	}

	// Secrets - MUST be provided
	if cfg.ModeratorKeySalt == "" {
		cfg.ModeratorKeySalt = os.Getenv("MODERATOR_KEY_SALT")
	}
	if cfg.ModeratorKeySalt == "" {
		return Config{}, errors.New("MODERATOR_KEY_SALT required")
	}

	if cfg.CharacterTokenSalt == "" {
		cfg.CharacterTokenSalt = os.Getenv("CHARACTER_TOKEN_SALT")
	}
	if cfg.CharacterTokenSalt == "" {
		return Config{}, errors.New("CHARACTER_TOKEN_SALT required")
	}

	var err error
	if cfg.SettlingDays < 0 {
		if cfg.SettlingDays, err = envInt("SETTLING_DAYS", 14); err != nil {
			return Config{}, err
		}
	}
	if cfg.TieGraceMonths < 0 {
		if cfg.TieGraceMonths, err = envInt("TIE_GRACE_MONTHS", 0); err != nil {
			return Config{}, err
		}
	}
	if cfg.DaysPerSimMonth == 0 {
		if cfg.DaysPerSimMonth, err = envInt("SIM_DAYS_PER_MONTH", 7); err != nil {
			return Config{}, err
		}
	}
	if cfg.DaysPerSimMonth <= 0 {
		return Config{}, errors.New("days per simulated month must be positive")
	}

	if simEpoch == "" {
		simEpoch = envString("SIM_EPOCH", "2025-01-01T00:00:00Z")
	}
	if cfg.SimEpoch, err = time.Parse(time.RFC3339, simEpoch); err != nil {
		return Config{}, fmt.Errorf("invalid SIM_EPOCH: %w", err)
	}

	if simStart == "" {
		simStart = envString("SIM_START", "1997-05")
	}
	if cfg.SimStart, err = ParseSimDate(simStart); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseSimDate reads a YYYY-MM simulated month
func ParseSimDate(s string) (models.SimDate, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return models.SimDate{}, fmt.Errorf("invalid simulated month %q (want YYYY-MM)", s)
	}
	return models.SimDate{Month: int(t.Month()), Year: t.Year()}, nil
}

func envInt(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", name)
	}
	return n, nil
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
