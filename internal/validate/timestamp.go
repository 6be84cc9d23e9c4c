// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/release-resolver/internal/query"
)

// timestampPattern matches e.g. "March 31, 2023 09:15 ET" or
// "April 5, 2023 4:05:30 PM EDT". Group 1 is the date and time, group 2 the
// zone marker.
var timestampPattern = regexp.MustCompile(
	`\b((?:January|February|March|April|May|June|July|August|September|October|November|December)` +
		` \d{1,2}, \d{4} \d{1,2}:\d{2}(?::\d{2})?(?: [AP]M)?)` +
		` (ET|EST|EDT|CT|CST|CDT|MT|MST|MDT|PT|PST|PDT|GMT|BST|CET|CEST|UTC)\b`)

// timestampLayouts are tried in order; the first that parses wins.
var timestampLayouts = []string{
	"January 2, 2006 15:04",
	"January 2, 2006 15:04:05",
	"January 2, 2006 3:04 PM",
	"January 2, 2006 3:04:05 PM",
}

const isoLayout = "2006-01-02 15:04:05"

// Timestamp is a publication timestamp as found on a page.
type Timestamp struct {
	// Raw is the full matched text, zone included.
	Raw string
	// Clock is Raw without the zone marker.
	Clock string
	Zone  string
}

// ExtractTimestamp finds the first publication timestamp in text.
func ExtractTimestamp(text string) (Timestamp, bool) {
	m := timestampPattern.FindStringSubmatch(text)
	if m == nil {
		return Timestamp{}, false
	}
	return Timestamp{Raw: m[0], Clock: m[1], Zone: m[2]}, true
}

// ParseTimestamp parses ts.Clock. The zone marker is not interpreted; the
// result carries the wall-clock time in UTC.
func ParseTimestamp(ts Timestamp) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts.Clock); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatISO renders t as "YYYY-MM-DD HH:MM:SS ZONE".
func FormatISO(t time.Time, zone string) string {
	out := t.Format(isoLayout)
	if zone != "" {
		out += " " + zone
	}
	return out
}

// WithinTolerance reports whether the calendar dates of a and b are at most
// query.Tolerance days apart.
func WithinTolerance(a, b time.Time) bool {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := da.Sub(db)
	if diff < 0 {
		diff = -diff
	}
	return diff <= query.Tolerance*24*time.Hour
}

// BodyText returns the visible text of the page body with a space between
// every text node and whitespace collapsed. Script and style contents are
// skipped.
func BodyText(doc *goquery.Document) string {
	roots := doc.Find("body").Nodes
	if len(roots) == 0 {
		roots = doc.Nodes
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
