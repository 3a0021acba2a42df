package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/westminster/auth"
	"github.com/danielhkuo/westminster/cliparse"
	"github.com/danielhkuo/westminster/db"
	"github.com/danielhkuo/westminster/middleware"
	"github.com/danielhkuo/westminster/roster"
	"github.com/danielhkuo/westminster/router"
	"github.com/danielhkuo/westminster/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Operator credentials never touch the database
	if cfg.PrintOnly() {
		printCredentials(os.Stdout, cfg)
		return
	}

	// Connect to PostgreSQL or SQLite
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if cfg.DatabaseType == "sqlite" {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	if cfg.ResetSchema {
		if err := db.DropSchema(dbConn); err != nil {
			slog.Error("schema reset failed", "error", err)
			os.Exit(1)
		}
		slog.Warn("Dropped all tables", "tables", len(db.Tables))
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Seed the roster from YAML if asked
	if cfg.RosterPath != "" {
		doc, err := roster.LoadFile(cfg.RosterPath)
		if err != nil {
			slog.Error("roster load failed", "error", err)
			os.Exit(1)
		}
		st := store.New(dbConn, cfg.DatabaseType)
		if err := st.ImportRoster(context.Background(), doc.Parliament.Parties, doc.Players); err != nil {
			slog.Error("roster import failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Roster seeded", "path", cfg.RosterPath, "parties", len(doc.Parliament.Parties), "characters", len(doc.Players))
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.WithRecovery(middleware.CORS(mux)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "sim_start", cfg.SimStart.String())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// printCredentials writes the moderator key and/or one character token.
func printCredentials(w io.Writer, cfg cliparse.Config) {
	if cfg.PrintModeratorKey {
		fmt.Fprintf(w, "X-Moderator-Key: %s\n", auth.GenerateModeratorKey(cfg.ModeratorKeySalt))
	}
	if cfg.PrintTokenFor != "" {
		fmt.Fprintf(w, "X-Character: %s\n", cfg.PrintTokenFor)
		fmt.Fprintf(w, "X-Character-Token: %s\n", auth.GenerateCharacterToken(cfg.PrintTokenFor, cfg.CharacterTokenSalt))
	}
}
