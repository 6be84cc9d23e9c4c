// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query builds search-engine queries that target a publisher's
// release pages, and derives the date window around a feed date.
package query

import (
	"strings"
	"time"
)

// Tolerance is the number of days on either side of a feed date within
// which a publication date is accepted.
const Tolerance = 2

const windowFmt = "2006-01-02"

// feedDateLayouts are tried in order against the first whitespace-separated
// token of a feed date ("03/31/2023 09:15:00" → "03/31/2023").
var feedDateLayouts = []string{
	"1/2/2006",
	"2006-01-02",
	"1-2-2006",
}

// Window is an inclusive date range in YYYY-MM-DD form. Both bounds are
// empty when no restriction applies.
type Window struct {
	Start string
	End   string
}

// IsZero reports whether the window imposes no date restriction.
func (w Window) IsZero() bool {
	return w.Start == "" || w.End == ""
}

// Query is one search attempt.
type Query struct {
	// Text is the headline, a shortened headline, or the ticker itself.
	Text      string
	Ticker    string
	UseTicker bool
	Window    Window
}

// Site restricts queries to the publisher's release pages.
type Site struct {
	Domain      string
	ReleasePath string
}

// Operator returns the site: restriction, e.g. "site:globenewswire.com/news-release".
func (s Site) Operator() string {
	op := "site:" + s.Domain
	if s.ReleasePath != "" {
		op += "/" + strings.Trim(s.ReleasePath, "/")
	}
	return op
}

// ParseFeedDate parses the calendar date of a feed timestamp. Only the
// first whitespace-separated token is considered.
func ParseFeedDate(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, fields[0]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateWindow returns [date-Tolerance, date+Tolerance] for a feed date, or an
// empty window if the date cannot be parsed.
func DateWindow(feedDate string) Window {
	d, ok := ParseFeedDate(feedDate)
	if !ok {
		return Window{}
	}
	return Window{
		Start: d.AddDate(0, 0, -Tolerance).Format(windowFmt),
		End:   d.AddDate(0, 0, Tolerance).Format(windowFmt),
	}
}

// Build renders q as a search-engine query string restricted to site.
//
// Text containing whitespace is quoted as an exact phrase. The ticker is
// appended only when UseTicker is set and the ticker is non-empty. after:
// and before: are appended only when both window bounds are present.
func Build(site Site, q Query) string {
	parts := []string{site.Operator()}

	text := strings.TrimSpace(q.Text)
	ticker := strings.TrimSpace(q.Ticker)

	if text != "" {
		if strings.ContainsAny(text, " \t") {
			parts = append(parts, `"`+text+`"`)
		} else {
			parts = append(parts, text)
		}
	}

	if q.UseTicker && ticker != "" {
		parts = append(parts, ticker)
	}

	if !q.Window.IsZero() {
		parts = append(parts, "after:"+q.Window.Start, "before:"+q.Window.End)
	}

	return strings.Join(parts, " ")
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// NormalizeQuotes maps curly quotation marks to straight ones.
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// ShortHeadline returns the first n words of headline.
func ShortHeadline(headline string, n int) string {
	words := strings.Fields(headline)
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
