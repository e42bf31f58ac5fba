package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/courtbot/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file created under the data directory.
const FileName = "courtbot.db"

// OpenLawsuitIndex covers the open-lawsuit lookup by guild and court room.
// Closed lawsuits (verdict set) are left out of it.
const OpenLawsuitIndex = "idx_lawsuits_guild_room"

// schemaTables are the tables every guild store operation touches.
var schemaTables = []string{"guild_states", "court_rooms", "lawsuits", "prison_entries"}

// Init opens the court database at baseDir/courtbot.db, migrating it to
// CurrentSchemaVersion. Tests pass t.TempDir() for baseDir.
func Init(baseDir string) (*sql.DB, error) {
	// Guild data stays private to the bot's user
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the DSN apply to every pooled connection
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := verifySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS guild_states (
		  guild_id       INTEGER PRIMARY KEY,
		  court_category INTEGER,
		  prison_role    INTEGER,
		  created_at     INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS court_rooms (
		  guild_id   INTEGER NOT NULL,
		  channel_id INTEGER NOT NULL,
		  role_id    INTEGER NOT NULL,
		  ongoing    INTEGER NOT NULL DEFAULT 0,
		  PRIMARY KEY (guild_id, channel_id)
		);

		CREATE TABLE IF NOT EXISTS lawsuits (
		  id               TEXT PRIMARY KEY,
		  guild_id         INTEGER NOT NULL,
		  plaintiff        INTEGER NOT NULL,
		  accused          INTEGER NOT NULL,
		  judge            INTEGER NOT NULL,
		  plaintiff_lawyer INTEGER,
		  accused_lawyer   INTEGER,
		  reason           TEXT NOT NULL,
		  verdict          TEXT,
		  court_room       INTEGER NOT NULL,
		  created_at       INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS ` + OpenLawsuitIndex + `
		ON lawsuits(guild_id, court_room)
		WHERE verdict IS NULL;

		CREATE TABLE IF NOT EXISTS prison_entries (
		  guild_id   INTEGER NOT NULL,
		  user_id    INTEGER NOT NULL,
		  created_at INTEGER NOT NULL,
		  PRIMARY KEY (guild_id, user_id)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifySchema fails when a migrated database lacks a court table or the
// open-lawsuit index, e.g. a file stamped with user_version by another tool.
func verifySchema(db *sql.DB) error {
	for _, table := range schemaTables {
		if err := requireSchemaObject(db, "table", table); err != nil {
			return err
		}
	}
	return requireSchemaObject(db, "index", OpenLawsuitIndex)
}

func requireSchemaObject(db *sql.DB, kind, name string) error {
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = ? AND name = ?", kind, name).Scan(&found)
	if err == sql.ErrNoRows {
		return fmt.Errorf("schema missing %s %s", kind, name)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
