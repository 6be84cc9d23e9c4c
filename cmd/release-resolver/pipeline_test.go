// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/pkg/types"
)

func TestNewPipeline_OpensLedger(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Batch.LedgerPath = filepath.Join(t.TempDir(), "state", "ledger.db")

	p, err := newPipeline(cfg)
	require.NoError(t, err)
	defer p.Close()

	require.NotNil(t, p.store)
	assert.Equal(t, cfg.Batch.LedgerPath, p.store.Path())
	assert.Same(t, p.store, p.resolver.Ledger)
}

func TestNewPipeline_NoLedger(t *testing.T) {
	p, err := newPipeline(types.DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	assert.Nil(t, p.store)
	assert.Nil(t, p.resolver.Ledger)
}

func TestNewPipeline_LeavesRetryDelayGlobalAlone(t *testing.T) {
	before := httputil.RetryBaseDelay
	cfg := types.DefaultConfig()
	cfg.HTTP.RetryBaseDelay = before * 7

	p, err := newPipeline(cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, before, httputil.RetryBaseDelay)
}

func TestNewPipeline_BadFieldOrder(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Batch.FieldOrder = "headline-first"

	_, err := newPipeline(cfg)
	assert.ErrorContains(t, err, "unknown field order")
}
