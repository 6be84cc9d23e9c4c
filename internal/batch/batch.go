// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch resolves every row of an input feed and appends the
// results to an output CSV that doubles as the resumption checkpoint.
//
// Rows are processed strictly in order, one at a time, with a fixed pause
// between rows. A row that fails unexpectedly is written with the ERROR
// sentinel and the batch moves on.
//
// See docs/ARCHITECTURE § Batch Processor.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/release-resolver/internal/pace"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// ErrInputMissing is returned by Run when the input file does not exist.
var ErrInputMissing = errors.New("input file not found")

// RowResolver resolves a single row. *resolve.Resolver satisfies it.
type RowResolver interface {
	Resolve(ctx context.Context, row types.FeedRow) (types.PRInfo, error)
}

// Processor runs batches.
type Processor struct {
	Resolver RowResolver
	Config   types.BatchConfig
	Logger   zerolog.Logger
}

// Result holds the outcome of a batch run.
type Result struct {
	RunID       string    `yaml:"run_id"`
	Input       string    `yaml:"input"`
	Output      string    `yaml:"output"`
	Started     time.Time `yaml:"started"`
	Finished    time.Time `yaml:"finished"`
	Resumed     int       `yaml:"resumed"`
	Resolved    int       `yaml:"resolved"`
	NotFound    int       `yaml:"not_found"`
	Errors      int       `yaml:"errors"`
	Malformed   int       `yaml:"malformed"`
	Interrupted bool      `yaml:"interrupted"`
}

// Processed returns the number of rows written during this run.
func (r Result) Processed() int {
	return r.Resolved + r.NotFound + r.Errors
}

// HasFailures reports whether any row was written with the ERROR sentinel.
func (r Result) HasFailures() bool {
	return r.Errors > 0
}

// Run resolves the rows of inputPath not yet present in outputPath and
// appends them. Per-row failures never abort the run; the returned error
// is reserved for a missing input, unreadable input, or an unwritable
// output. Cancelling ctx stops the run between rows.
func (p *Processor) Run(ctx context.Context, inputPath, outputPath string) (Result, error) {
	result := Result{
		RunID:   uuid.NewString(),
		Input:   inputPath,
		Output:  outputPath,
		Started: time.Now().UTC(),
	}
	log := p.Logger.With().Str("run_id", result.RunID).Logger()

	reader, err := OpenReader(inputPath, p.Config.FieldOrder, p.Config.SkipHeader)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	done, err := CountOutputRows(outputPath)
	if err != nil {
		return result, err
	}
	if done > 0 {
		log.Info().Int("rows", done).Str("output", outputPath).Msg("resuming after existing output")
	}

	writer, err := OpenWriter(outputPath)
	if err != nil {
		return result, err
	}
	defer writer.Close()

	rowPacer := pace.New(p.Config.RowDelay)
	log.Info().Str("input", inputPath).Dur("row_delay", rowPacer.Interval()).Msg("batch started")

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.finish(log, result), err
		}

		if rec.Malformed {
			log.Warn().Strs("fields", rec.Raw).Msg("skipping malformed row")
			result.Malformed++
			continue
		}
		if result.Resumed < done {
			result.Resumed++
			continue
		}

		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		if err := rowPacer.Wait(ctx); err != nil {
			result.Interrupted = true
			break
		}

		info, rowErr := p.resolveRow(ctx, rec.Row)
		if ctx.Err() != nil && (rowErr != nil || !info.Found()) {
			// The in-flight row is dropped; a rerun resumes from it.
			result.Interrupted = true
			break
		}

		var out types.OutputRow
		switch {
		case rowErr != nil:
			log.Error().Err(rowErr).Int("row", rec.Row.Line).Str("ticker", rec.Row.Ticker).
				Str("headline", rec.Row.Headline).Msg("row failed")
			out = types.ErrorRow(rec.Row)
			result.Errors++
		case info.Found():
			out = types.NewOutputRow(rec.Row, info)
			result.Resolved++
		default:
			out = types.NewOutputRow(rec.Row, types.NotFound)
			result.NotFound++
		}

		if err := writer.Write(out); err != nil {
			return p.finish(log, result), err
		}
	}

	if result.Resumed < done {
		log.Warn().Int("output_rows", done).Int("input_rows", result.Resumed).
			Msg("output has more rows than input; nothing to resume")
	}
	return p.finish(log, result), nil
}

// resolveRow converts a panic inside the resolver into a row error.
func (p *Processor) resolveRow(ctx context.Context, row types.FeedRow) (info types.PRInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = types.NotFound, fmt.Errorf("panic resolving row: %v", r)
		}
	}()
	return p.Resolver.Resolve(ctx, row)
}

func (p *Processor) finish(log zerolog.Logger, result Result) Result {
	result.Finished = time.Now().UTC()
	ev := log.Info()
	if result.Interrupted || result.HasFailures() {
		ev = log.Warn()
	}
	ev.Int("processed", result.Processed()).Int("resolved", result.Resolved).
		Int("not_found", result.NotFound).Int("errors", result.Errors).
		Int("malformed", result.Malformed).Int("resumed", result.Resumed).
		Bool("interrupted", result.Interrupted).Msg("batch finished")

	if p.Config.SummaryPath != "" {
		if err := WriteSummary(p.Config.SummaryPath, result); err != nil {
			log.Warn().Err(err).Str("path", p.Config.SummaryPath).Msg("summary write failed")
		}
	}
	return result
}
