// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the release-resolver pipeline.
//
// See docs/ARCHITECTURE.md § Data Model.
package types

// ErrorSentinel is written in place of a timestamp when a row failed with an
// unexpected error.
const ErrorSentinel = "ERROR"

// OutputHeader is the header record of every output file.
var OutputHeader = []string{"Ticker", "Date", "Headline", "ISO_Timestamp"}

// FeedRow is one input record describing a press release to resolve.
type FeedRow struct {
	Ticker   string `json:"ticker" yaml:"ticker"`
	FeedDate string `json:"feed_date" yaml:"feed_date"`
	Headline string `json:"headline" yaml:"headline"`

	// Line is the 1-based record number in the input file. Zero for rows
	// that did not come from a file.
	Line int `json:"-" yaml:"-"`
}

// PRInfo is a validated press release: the publisher URL and the official
// timestamp found on it. The zero value means "not found".
type PRInfo struct {
	// URL is the accepted publisher page.
	URL string `json:"url" yaml:"url"`

	// RawTimestamp is the timestamp text as it appears on the page
	// (e.g. "March 31, 2023 09:15 ET").
	RawTimestamp string `json:"raw_timestamp" yaml:"raw_timestamp"`

	// ISOTimestamp is RawTimestamp normalized to "2006-01-02 15:04:05 ZONE".
	// Empty when the raw text matched the pattern but no layout parsed it.
	ISOTimestamp string `json:"iso_timestamp" yaml:"iso_timestamp"`
}

// NotFound is the explicit "no accepted candidate" result.
var NotFound = PRInfo{}

// Found reports whether p holds an accepted candidate.
func (p PRInfo) Found() bool {
	return p.URL != ""
}

// OutputRow is one persisted result record.
type OutputRow struct {
	Ticker       string
	FeedDate     string
	Headline     string
	ISOTimestamp string
}

// NewOutputRow builds the output record for row from a resolution result.
func NewOutputRow(row FeedRow, info PRInfo) OutputRow {
	return OutputRow{
		Ticker:       row.Ticker,
		FeedDate:     row.FeedDate,
		Headline:     row.Headline,
		ISOTimestamp: info.ISOTimestamp,
	}
}

// ErrorRow builds the output record for a row that failed unexpectedly.
func ErrorRow(row FeedRow) OutputRow {
	return OutputRow{
		Ticker:       row.Ticker,
		FeedDate:     row.FeedDate,
		Headline:     row.Headline,
		ISOTimestamp: ErrorSentinel,
	}
}

// Record returns the row as CSV fields in header order.
func (r OutputRow) Record() []string {
	return []string{r.Ticker, r.FeedDate, r.Headline, r.ISOTimestamp}
}
