// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/pdiddy/release-resolver/pkg/types"
)

// Writer appends output rows. Each row reaches the file in a single write
// so an interrupted run never leaves a partial record behind.
type Writer struct {
	f *os.File
}

// OpenWriter opens path for appending, creating it if needed. The header
// is written only when the file is new or empty.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat output: %w", err)
	}

	w := &Writer{f: f}
	if info.Size() == 0 {
		if err := w.writeRecord(types.OutputHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}
	return w, nil
}

// Write appends one row.
func (w *Writer) Write(row types.OutputRow) error {
	if err := w.writeRecord(row.Record()); err != nil {
		return fmt.Errorf("writing row for %s: %w", row.Ticker, err)
	}
	return nil
}

func (w *Writer) writeRecord(fields []string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(fields); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := w.f.Write(buf.Bytes())
	return err
}

// Close closes the output file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// CountOutputRows returns the number of data rows already in the output at
// path. A missing or empty file counts as zero.
func CountOutputRows(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening output: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	n := 0
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("counting output rows: %w", err)
		}
		if first {
			first = false
			if slices.Equal(rec, types.OutputHeader) {
				continue
			}
		}
		n++
	}
}
