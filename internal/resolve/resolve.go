// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve finds the publisher release for one feed row by running
// progressively looser search modes through the provider chain and
// validating each candidate until one is accepted.
//
// See docs/ARCHITECTURE § Resolution Orchestrator.
package resolve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/release-resolver/internal/query"
	"github.com/pdiddy/release-resolver/internal/search"
	"github.com/pdiddy/release-resolver/internal/validate"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// Searcher runs queries through providers. *search.Chain satisfies it.
type Searcher interface {
	Providers() []search.Provider
	Search(ctx context.Context, p search.Provider, q query.Query) []string
}

// CandidateValidator checks one candidate URL. *validate.Validator
// satisfies it.
type CandidateValidator interface {
	Validate(ctx context.Context, rawURL string, want validate.Expect) (types.PRInfo, error)
}

// Ledger caches accepted resolutions. *ledger.Store satisfies it.
type Ledger interface {
	Lookup(ctx context.Context, row types.FeedRow) (types.PRInfo, bool, error)
	Record(ctx context.Context, row types.FeedRow, info types.PRInfo) error
}

// Resolver orchestrates search and validation for single rows.
type Resolver struct {
	Chain     Searcher
	Validator CandidateValidator

	// Ledger is optional.
	Ledger Ledger

	// ShortWords is the word count of the shortened headline
	// (types.DefaultShortWords when zero).
	ShortWords int

	Logger zerolog.Logger
}

// Resolve returns the accepted release for row, or types.NotFound when no
// mode, provider, or candidate produced one. Not finding a release is not
// an error; errors are reserved for ledger failures, unexpected validator
// failures, and context cancellation.
func (r *Resolver) Resolve(ctx context.Context, row types.FeedRow) (types.PRInfo, error) {
	log := r.Logger.With().Int("row", row.Line).Str("ticker", row.Ticker).Logger()

	if r.Ledger != nil {
		info, ok, err := r.Ledger.Lookup(ctx, row)
		if err != nil {
			return types.NotFound, fmt.Errorf("ledger lookup: %w", err)
		}
		if ok {
			log.Info().Str("url", info.URL).Msg("resolved from ledger")
			return info, nil
		}
	}

	shortWords := r.ShortWords
	if shortWords <= 0 {
		shortWords = types.DefaultShortWords
	}

	want := validate.Expect{Headline: row.Headline, FeedDate: row.FeedDate}
	providers := r.Chain.Providers()
	rejected := make(map[string]bool)
	tried := make(map[query.Query]bool)

	for _, mode := range Modes {
		q, ok := mode.Query(row, shortWords)
		if !ok || tried[q] {
			continue
		}
		tried[q] = true

		for _, p := range providers {
			if err := ctx.Err(); err != nil {
				return types.NotFound, err
			}

			for _, candidate := range r.Chain.Search(ctx, p, q) {
				if rejected[candidate] {
					continue
				}
				info, err := r.Validator.Validate(ctx, candidate, want)
				if err != nil && !validate.IsRejection(err) {
					if ctx.Err() != nil {
						return types.NotFound, ctx.Err()
					}
					return types.NotFound, fmt.Errorf("validating %s: %w", candidate, err)
				}
				if err != nil || !info.Found() {
					rejected[candidate] = true
					continue
				}

				log.Info().Str("mode", mode.Name).Str("provider", p.Name()).
					Str("url", info.URL).Str("timestamp", info.ISOTimestamp).Msg("resolved")
				if r.Ledger != nil {
					if err := r.Ledger.Record(ctx, row, info); err != nil {
						return info, fmt.Errorf("ledger record: %w", err)
					}
				}
				return info, nil
			}
		}
	}

	// Providers swallow cancellation, so an interrupted search can end the
	// loop looking like a miss.
	if err := ctx.Err(); err != nil {
		return types.NotFound, err
	}

	log.Info().Int("rejected", len(rejected)).Msg("no matching release")
	return types.NotFound, nil
}
