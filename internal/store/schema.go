package store

import "database/sql"

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS playback_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			thumbnail_url TEXT,
			duration_seconds REAL NOT NULL DEFAULT 0,
			position_seconds REAL NOT NULL DEFAULT 0,
			is_playing INTEGER NOT NULL DEFAULT 0,
			saved_at INTEGER NOT NULL,
			session TEXT
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffled INTEGER NOT NULL DEFAULT 0,
			volume INTEGER NOT NULL DEFAULT 100
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			thumbnail_url TEXT,
			duration_seconds REAL NOT NULL DEFAULT 0,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_position ON queue_tracks(position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add session column if missing
	_, _ = db.Exec(`ALTER TABLE playback_snapshot ADD COLUMN session TEXT`)

	return nil
}
