// Package store is the durable sqlite-backed persistence layer. It owns all
// rows; the weather service and the registry only borrow references through
// queries and commands. It knows nothing about freshness.
package store

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

type Store struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// Open connects to the sqlite database at path (":memory:" for tests),
// bootstraps the schema and seeds the default admin account.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// sqlite allows a single writer; one connection avoids SQLITE_BUSY under
	// concurrent upserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	if _, err := db.Exec(
		"INSERT OR IGNORE INTO users (username, password, role) VALUES (?, ?, ?)",
		"admin", "admin123", "admin",
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}
	s.logger.Info().Str("path", path).Msg("sqlite store ready")
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint
// failure. The modernc driver exposes this through the error text only.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
