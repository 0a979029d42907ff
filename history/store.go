package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Jason2031/byrbt-bot/tracker"
)

// Store persists download records in a SQLite database. It implements
// tracker.HistoryRecorder.
type Store struct {
	db     *sql.DB
	dbPath string
	logger zerolog.Logger
}

// Open opens or creates the history database at the given path.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// SQLite only supports one writer; the bot has one caller anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{
		db:     db,
		dbPath: dbPath,
		logger: logger.With().Str("component", "history").Logger(),
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		torrent_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		category TEXT,
		save_dir TEXT,
		client TEXT,
		downloaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_torrent ON downloads(torrent_id);
	CREATE INDEX IF NOT EXISTS idx_downloads_time ON downloads(downloaded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordDownload writes one completed handoff.
func (s *Store) RecordDownload(ctx context.Context, rec tracker.DownloadRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (torrent_id, name, category, save_dir, client, downloaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.TorrentID, rec.Name, rec.Category, rec.SaveDir, rec.Client, rec.DownloadedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}

	s.logger.Debug().Int("torrent_id", rec.TorrentID).Str("name", rec.Name).Msg("Recorded download")
	return nil
}

// Seen reports whether a torrent id was downloaded before.
func (s *Store) Seen(ctx context.Context, torrentID int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM downloads WHERE torrent_id = ?`, torrentID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking download history: %w", err)
	}
	return count > 0, nil
}

// Recent returns the newest records, most recent first. A limit of 0
// or less returns everything.
func (s *Store) Recent(ctx context.Context, limit int) ([]tracker.DownloadRecord, error) {
	query := `SELECT torrent_id, name, category, save_dir, client, downloaded_at
	          FROM downloads ORDER BY downloaded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading download history: %w", err)
	}
	defer rows.Close()

	var records []tracker.DownloadRecord
	for rows.Next() {
		var rec tracker.DownloadRecord
		var downloadedAt string
		if err := rows.Scan(&rec.TorrentID, &rec.Name, &rec.Category, &rec.SaveDir, &rec.Client, &downloadedAt); err != nil {
			return nil, fmt.Errorf("scanning download record: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, downloadedAt); err == nil {
			rec.DownloadedAt = t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading download history: %w", err)
	}

	return records, nil
}
