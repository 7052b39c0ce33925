// Package store persists playback state between sessions.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "chorus"
	dbFileName = "chorus.db"
)

// Manager owns the state database. Saves are best-effort: failures are
// logged and swallowed, never surfaced to playback.
type Manager struct {
	db  *sql.DB
	log *log.Logger
}

// Open opens (or creates) the state database in the XDG data directory.
func Open(logger *log.Logger) (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath, logger)
}

// OpenPath opens the state database at an explicit path.
func OpenPath(dbPath string, logger *log.Logger) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}
	return &Manager{db: db, log: logger}, nil
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}
