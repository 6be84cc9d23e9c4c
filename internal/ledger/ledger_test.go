// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/release-resolver/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var (
	acmeRow = types.FeedRow{Ticker: "ACME", FeedDate: "03/31/2023", Headline: "Acme Corp Announces Results"}
	acmePR  = types.PRInfo{
		URL:          "https://www.globenewswire.com/news-release/2023/03/31/1/0/en/Acme.html",
		RawTimestamp: "March 31, 2023 09:15 ET",
		ISOTimestamp: "2023-03-31 09:15:00 ET",
	}
)

func TestOpenCreatesDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, path, store.Path())
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Record(context.Background(), acmeRow, acmePR))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, ok, err := s2.Lookup(context.Background(), acmeRow)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, acmePR, got)
}

func TestLookupMiss(t *testing.T) {
	store := testStore(t)
	got, ok, err := store.Lookup(context.Background(), acmeRow)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, types.NotFound, got)
}

func TestLookupNormalizesKey(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, acmeRow, acmePR))

	variant := types.FeedRow{Ticker: " acme", FeedDate: "03/31/2023 ", Headline: "ACME  Corp Announces Results"}
	got, ok, err := store.Lookup(ctx, variant)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, acmePR, got)

	other := acmeRow
	other.FeedDate = "04/01/2023"
	_, ok, err = store.Lookup(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok, "feed date is part of the key")
}

func TestRecordIgnoresNotFound(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, acmeRow, types.NotFound))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecordReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, acmeRow, acmePR))
	updated := acmePR
	updated.URL = "https://www.globenewswire.com/news-release/2023/03/31/2/0/en/Acme.html"
	require.NoError(t, store.Record(ctx, acmeRow, updated))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _, err := store.Lookup(ctx, acmeRow)
	require.NoError(t, err)
	assert.Equal(t, updated.URL, got.URL)
}

func TestExportYAML(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, acmeRow, acmePR))
	require.NoError(t, store.Record(ctx, types.FeedRow{Ticker: "BETA", FeedDate: "2023-04-01", Headline: "Beta News"}, acmePR))

	var buf bytes.Buffer
	require.NoError(t, store.Export(ctx, &buf, FormatYAML, ""))

	var entries []Entry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "ACME", entries[0].Ticker)
	assert.Equal(t, "Acme Corp Announces Results", entries[0].Headline)
	assert.Equal(t, "BETA", entries[1].Ticker)
	assert.NotEmpty(t, entries[0].ResolvedAt)
}

func TestExportJSONFilteredByTicker(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, acmeRow, acmePR))
	require.NoError(t, store.Record(ctx, types.FeedRow{Ticker: "BETA", FeedDate: "2023-04-01", Headline: "Beta News"}, acmePR))

	var buf bytes.Buffer
	require.NoError(t, store.Export(ctx, &buf, FormatJSON, "beta"))

	var entries []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "BETA", entries[0].Ticker)
}

func TestExportEmpty(t *testing.T) {
	store := testStore(t)
	var buf bytes.Buffer
	require.NoError(t, store.Export(context.Background(), &buf, FormatJSON, ""))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportUnknownFormat(t *testing.T) {
	store := testStore(t)
	err := store.Export(context.Background(), &bytes.Buffer{}, "xml", "")
	assert.ErrorContains(t, err, "unknown export format")
}
