// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/release-resolver/internal/browser"
	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/ledger"
	"github.com/pdiddy/release-resolver/internal/pace"
	"github.com/pdiddy/release-resolver/internal/resolve"
	"github.com/pdiddy/release-resolver/internal/search"
	"github.com/pdiddy/release-resolver/internal/validate"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// pipeline holds the process-scoped resources shared by every row.
type pipeline struct {
	client   *httputil.Client
	renderer *browser.Renderer
	store    *ledger.Store
	resolver *resolve.Resolver
}

func newPipeline(cfg types.Config) (*pipeline, error) {
	switch cfg.Batch.FieldOrder {
	case types.OrderTickerDate, types.OrderDateTicker:
	default:
		return nil, fmt.Errorf("unknown field order %q: use %s or %s",
			cfg.Batch.FieldOrder, types.OrderTickerDate, types.OrderDateTicker)
	}

	client, err := httputil.NewClient(cfg.HTTP, pace.New(cfg.HTTP.FetchDelay))
	if err != nil {
		return nil, err
	}
	p := &pipeline{client: client}

	var renderer search.Renderer
	if cfg.Search.EnableBrowser {
		p.renderer = browser.New(cfg.HTTP.UserAgent, client.Timeout(), logger)
		renderer = p.renderer
	}

	chain := search.NewChain(logger, search.Providers(cfg, client, renderer, logger)...)
	var names []string
	for _, prov := range chain.Providers() {
		names = append(names, prov.Name())
	}
	logger.Info().Strs("providers", names).Msg("search providers available")

	p.resolver = &resolve.Resolver{
		Chain:      chain,
		Validator:  validate.New(client, logger),
		ShortWords: cfg.Search.ShortWords,
		Logger:     logger,
	}

	if cfg.Batch.LedgerPath != "" {
		store, err := ledger.Open(cfg.Batch.LedgerPath)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.store = store
		p.resolver.Ledger = store

		n, err := store.Count(context.Background())
		if err != nil {
			p.Close()
			return nil, err
		}
		logger.Info().Str("path", store.Path()).Int("resolutions", n).Msg("ledger opened")
	}
	return p, nil
}

// Close releases the HTTP client, browser and ledger.
func (p *pipeline) Close() {
	p.client.Close()
	if p.renderer != nil {
		if err := p.renderer.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing browser")
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing ledger")
		}
	}
}
