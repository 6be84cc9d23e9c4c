// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Entry is one stored resolution as exported.
type Entry struct {
	Ticker       string `json:"ticker" yaml:"ticker"`
	FeedDate     string `json:"feed_date" yaml:"feed_date"`
	Headline     string `json:"headline" yaml:"headline"`
	URL          string `json:"url" yaml:"url"`
	RawTimestamp string `json:"raw_timestamp" yaml:"raw_timestamp"`
	ISOTimestamp string `json:"iso_timestamp" yaml:"iso_timestamp"`
	ResolvedAt   string `json:"resolved_at" yaml:"resolved_at"`
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Entries returns stored resolutions, optionally restricted to one ticker,
// ordered by ticker and feed date.
func (s *Store) Entries(ctx context.Context, ticker string) ([]Entry, error) {
	q := `SELECT ticker, feed_date, headline, url, raw_timestamp, iso_timestamp, resolved_at
		FROM resolutions`
	var args []any
	if ticker != "" {
		q += ` WHERE ticker = ?`
		args = append(args, strings.ToUpper(strings.TrimSpace(ticker)))
	}
	q += ` ORDER BY ticker, feed_date, headline_key`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resolutions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Ticker, &e.FeedDate, &e.Headline, &e.URL,
			&e.RawTimestamp, &e.ISOTimestamp, &e.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Export writes stored resolutions to w in the given format.
func (s *Store) Export(ctx context.Context, w io.Writer, format, ticker string) error {
	entries, err := s.Entries(ctx, ticker)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}

	var data []byte
	switch format {
	case FormatYAML, "":
		data, err = yaml.Marshal(entries)
	case FormatJSON:
		data, err = json.MarshalIndent(entries, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
