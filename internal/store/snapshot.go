package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
)

// Snapshot records what was playing, for restore at next startup.
type Snapshot struct {
	Track     catalog.Track
	Position  time.Duration
	IsPlaying bool
	SavedAt   time.Time
	Session   string
}

// SaveSnapshot overwrites the persisted snapshot. Best-effort: failures
// are swallowed so persistence can never break playback.
func (m *Manager) SaveSnapshot(s Snapshot) {
	if !s.Track.Valid() {
		return
	}
	_, err := m.db.Exec(`
		INSERT INTO playback_snapshot
			(id, track_id, title, artist, thumbnail_url, duration_seconds,
			 position_seconds, is_playing, saved_at, session)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			track_id = excluded.track_id,
			title = excluded.title,
			artist = excluded.artist,
			thumbnail_url = excluded.thumbnail_url,
			duration_seconds = excluded.duration_seconds,
			position_seconds = excluded.position_seconds,
			is_playing = excluded.is_playing,
			saved_at = excluded.saved_at,
			session = excluded.session
	`, s.Track.ID, s.Track.Title, s.Track.ArtistLabel, s.Track.ThumbnailURL,
		s.Track.Duration.Seconds(), s.Position.Seconds(), s.IsPlaying,
		s.SavedAt.Unix(), s.Session)
	if err != nil {
		m.log.Debug("snapshot save failed", "err", err)
	}
}

// LoadSnapshot returns the persisted snapshot, or nil if none exists.
// A snapshot whose track id fails the catalog format check is cleared
// and treated as absent.
func (m *Manager) LoadSnapshot() *Snapshot {
	var (
		s           Snapshot
		durationSec float64
		positionSec float64
		savedAt     int64
		thumbnail   sql.NullString
		session     sql.NullString
	)
	row := m.db.QueryRow(`
		SELECT track_id, title, artist, thumbnail_url, duration_seconds,
		       position_seconds, is_playing, saved_at, session
		FROM playback_snapshot WHERE id = 1
	`)
	err := row.Scan(&s.Track.ID, &s.Track.Title, &s.Track.ArtistLabel,
		&thumbnail, &durationSec, &positionSec, &s.IsPlaying, &savedAt, &session)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		m.log.Debug("snapshot load failed", "err", err)
		return nil
	}

	if !catalog.ValidID(s.Track.ID) || positionSec < 0 {
		m.log.Debug("discarding corrupt snapshot", "track", s.Track.ID)
		m.ClearSnapshot()
		return nil
	}

	s.Track.ThumbnailURL = thumbnail.String
	s.Track.Duration = secondsDuration(durationSec)
	s.Position = secondsDuration(positionSec)
	s.SavedAt = time.Unix(savedAt, 0)
	s.Session = session.String
	return &s
}

// ClearSnapshot removes the persisted snapshot.
func (m *Manager) ClearSnapshot() {
	if _, err := m.db.Exec(`DELETE FROM playback_snapshot`); err != nil {
		m.log.Debug("snapshot clear failed", "err", err)
	}
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
