// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/release-resolver/pkg/types"
)

// minFields is the smallest well-formed record: ticker, date, headline.
const minFields = 3

// Record is one input record. Malformed records carry their raw fields
// and no row.
type Record struct {
	Row       types.FeedRow
	Raw       []string
	Malformed bool
}

// Reader reads feed rows from a CSV file.
type Reader struct {
	f          *os.File
	csv        *csv.Reader
	order      types.FieldOrder
	skipHeader bool
	n          int
}

// OpenReader opens the input at path. A missing file yields an error
// wrapping ErrInputMissing.
func OpenReader(path string, order types.FieldOrder, skipHeader bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return NewReader(f, order, skipHeader), nil
}

// NewReader reads records from f.
func NewReader(f *os.File, order types.FieldOrder, skipHeader bool) *Reader {
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &Reader{f: f, csv: cr, order: order, skipHeader: skipHeader}
}

// Next returns the next record, or io.EOF at the end of input.
func (r *Reader) Next() (Record, error) {
	for {
		fields, err := r.csv.Read()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("reading input: %w", err)
		}
		r.n++
		if r.n == 1 && r.skipHeader {
			continue
		}
		line, _ := r.csv.FieldPos(0)
		return parseRecord(fields, r.order, line), nil
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// parseRecord maps fields to a FeedRow. Fields past the second are
// rejoined with commas so an unquoted headline containing commas is
// reconstituted.
func parseRecord(fields []string, order types.FieldOrder, line int) Record {
	if len(fields) < minFields || blank(fields) {
		return Record{Raw: fields, Malformed: true}
	}

	ticker, date := fields[0], fields[1]
	if order == types.OrderDateTicker {
		ticker, date = date, ticker
	}
	return Record{
		Raw: fields,
		Row: types.FeedRow{
			Ticker:   strings.TrimSpace(ticker),
			FeedDate: strings.TrimSpace(date),
			Headline: strings.TrimSpace(strings.Join(fields[2:], ",")),
			Line:     line,
		},
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
