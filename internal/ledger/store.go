// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists accepted resolutions in SQLite so a later run
// does not query search providers again for a row it already resolved.
//
// Rows are keyed by ticker, feed date and normalized headline. Only
// accepted results are stored; not-found rows are always retried.
//
// See docs/ARCHITECTURE § Resolution Ledger.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/release-resolver/internal/validate"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			ticker TEXT NOT NULL,
			feed_date TEXT NOT NULL,
			headline_key TEXT NOT NULL,
			headline TEXT NOT NULL,
			url TEXT NOT NULL,
			raw_timestamp TEXT NOT NULL,
			iso_timestamp TEXT NOT NULL,
			resolved_at TEXT NOT NULL,
			PRIMARY KEY (ticker, feed_date, headline_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_ticker ON resolutions(ticker)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// key returns the lookup key for row. Ticker case and headline formatting
// do not distinguish rows.
func key(row types.FeedRow) (ticker, feedDate, headline string) {
	return strings.ToUpper(strings.TrimSpace(row.Ticker)),
		strings.TrimSpace(row.FeedDate),
		validate.NormalizeHeadline(row.Headline)
}

// Lookup returns the stored resolution for row, if any.
func (s *Store) Lookup(ctx context.Context, row types.FeedRow) (types.PRInfo, bool, error) {
	ticker, feedDate, headline := key(row)

	var info types.PRInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT url, raw_timestamp, iso_timestamp FROM resolutions
		 WHERE ticker = ? AND feed_date = ? AND headline_key = ?`,
		ticker, feedDate, headline,
	).Scan(&info.URL, &info.RawTimestamp, &info.ISOTimestamp)

	if errors.Is(err, sql.ErrNoRows) {
		return types.NotFound, false, nil
	}
	if err != nil {
		return types.NotFound, false, fmt.Errorf("looking up %s %s: %w", ticker, feedDate, err)
	}
	return info, true, nil
}

// Record stores an accepted resolution for row, replacing any earlier one.
// Not-found results are ignored.
func (s *Store) Record(ctx context.Context, row types.FeedRow, info types.PRInfo) error {
	if !info.Found() {
		return nil
	}
	ticker, feedDate, headline := key(row)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolutions (ticker, feed_date, headline_key, headline, url, raw_timestamp, iso_timestamp, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ticker, feed_date, headline_key) DO UPDATE SET
			headline=excluded.headline, url=excluded.url,
			raw_timestamp=excluded.raw_timestamp, iso_timestamp=excluded.iso_timestamp,
			resolved_at=excluded.resolved_at`,
		ticker, feedDate, headline, row.Headline,
		info.URL, info.RawTimestamp, info.ISOTimestamp,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording %s %s: %w", ticker, feedDate, err)
	}
	return nil
}

// Count returns the number of stored resolutions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM resolutions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting resolutions: %w", err)
	}
	return n, nil
}
