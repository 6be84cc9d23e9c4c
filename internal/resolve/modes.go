// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strings"

	"github.com/pdiddy/release-resolver/internal/query"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// TextForm selects what the query text is built from.
type TextForm int

const (
	FullHeadline TextForm = iota
	ShortHeadline
	TickerOnly
)

// Mode is one search strategy.
type Mode struct {
	Name      string
	Text      TextForm
	UseTicker bool
	Dated     bool
}

// Modes lists search strategies from most to least specific.
var Modes = []Mode{
	{Name: "ticker+headline+date", Text: FullHeadline, UseTicker: true, Dated: true},
	{Name: "ticker+short+date", Text: ShortHeadline, UseTicker: true, Dated: true},
	{Name: "short+date", Text: ShortHeadline, Dated: true},
	{Name: "ticker+headline", Text: FullHeadline, UseTicker: true},
	{Name: "ticker+date", Text: TickerOnly, Dated: true},
	{Name: "ticker", Text: TickerOnly},
}

// Query builds the mode's query for row. It reports false when the mode
// has nothing to search for, e.g. a ticker-only mode for a row without a
// ticker.
func (m Mode) Query(row types.FeedRow, shortWords int) (query.Query, bool) {
	headline := query.NormalizeQuotes(strings.TrimSpace(row.Headline))
	ticker := strings.TrimSpace(row.Ticker)

	q := query.Query{Ticker: ticker, UseTicker: m.UseTicker}
	switch m.Text {
	case FullHeadline:
		q.Text = headline
	case ShortHeadline:
		q.Text = query.ShortHeadline(headline, shortWords)
	case TickerOnly:
		q.Text = ticker
		q.UseTicker = false
	}
	if q.Text == "" {
		return query.Query{}, false
	}
	if m.Dated {
		q.Window = query.DateWindow(row.FeedDate)
	}
	return q, true
}
