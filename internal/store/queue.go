package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/chorusfm/chorus/internal/catalog"
)

// QueueState is the persisted queue: tracks, cursor, modes, volume.
type QueueState struct {
	CurrentIndex int
	RepeatMode   int
	Shuffled     bool
	Volume       int
	Tracks       []catalog.Track
}

// SaveQueue overwrites the persisted queue state.
func (m *Manager) SaveQueue(state QueueState) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO queue_state (id, current_index, repeat_mode, shuffled, volume)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_index = excluded.current_index,
			repeat_mode = excluded.repeat_mode,
			shuffled = excluded.shuffled,
			volume = excluded.volume
	`, state.CurrentIndex, state.RepeatMode, state.Shuffled, state.Volume)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO queue_tracks (position, track_id, title, artist, thumbnail_url, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range state.Tracks {
		if !t.Valid() {
			return fmt.Errorf("queue track %d: malformed id %q", i, t.ID)
		}
		if _, err := stmt.Exec(i, t.ID, t.Title, t.ArtistLabel, t.ThumbnailURL, t.Duration.Seconds()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadQueue returns the persisted queue state. Tracks with malformed ids
// are skipped; an absent row yields an empty state with index -1.
func (m *Manager) LoadQueue() (*QueueState, error) {
	state := &QueueState{CurrentIndex: -1, Volume: 100}

	row := m.db.QueryRow(`SELECT current_index, repeat_mode, shuffled, volume FROM queue_state WHERE id = 1`)
	err := row.Scan(&state.CurrentIndex, &state.RepeatMode, &state.Shuffled, &state.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`
		SELECT track_id, title, artist, thumbnail_url, duration_seconds
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t           catalog.Track
			artist      sql.NullString
			thumbnail   sql.NullString
			durationSec float64
		)
		if err := rows.Scan(&t.ID, &t.Title, &artist, &thumbnail, &durationSec); err != nil {
			return nil, err
		}
		if !t.Valid() {
			m.log.Debug("skipping persisted track with malformed id", "id", t.ID)
			continue
		}
		t.ArtistLabel = artist.String
		t.ThumbnailURL = thumbnail.String
		t.Duration = secondsDuration(durationSec)
		state.Tracks = append(state.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if state.CurrentIndex >= len(state.Tracks) {
		state.CurrentIndex = len(state.Tracks) - 1
	}
	return state, nil
}
