// Package history records resolved streams in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ytresolve/internal/config"
	"ytresolve/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS resolutions (
	video_id    TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	client      TEXT NOT NULL,
	itag        INTEGER NOT NULL,
	bitrate     INTEGER NOT NULL,
	resolved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS resolutions_resolved_at ON resolutions (resolved_at DESC);
`

// Store is the resolution history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the database at config.HistoryPath.
func OpenDefault() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves an entry, replacing any earlier one for the same video.
func (s *Store) Record(ctx context.Context, e media.HistoryEntry) error {
	if e.ResolvedAt.IsZero() {
		e.ResolvedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolutions (video_id, title, client, itag, bitrate, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			client = excluded.client,
			itag = excluded.itag,
			bitrate = excluded.bitrate,
			resolved_at = excluded.resolved_at`,
		e.VideoID, e.Title, e.Client, e.Itag, e.Bitrate, e.ResolvedAt.Unix())
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.VideoID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]media.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, title, client, itag, bitrate, resolved_at
		FROM resolutions
		ORDER BY resolved_at DESC, video_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []media.HistoryEntry
	for rows.Next() {
		var (
			e  media.HistoryEntry
			ts int64
		)
		if err := rows.Scan(&e.VideoID, &e.Title, &e.Client, &e.Itag, &e.Bitrate, &ts); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.ResolvedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return entries, nil
}

// Remove deletes the entry for videoID.
func (s *Store) Remove(ctx context.Context, videoID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM resolutions WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("removing %s: %w", videoID, err)
	}
	return nil
}

// FormatForDisplay renders one line per entry.
func FormatForDisplay(entries []media.HistoryEntry) []string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		items = append(items, fmt.Sprintf("%s  %s  itag %d  %s",
			e.ResolvedAt.Format("2006-01-02 15:04"), e.VideoID, e.Itag, title))
	}
	return items
}
