// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate confirms that a candidate URL is the expected press
// release and extracts its official publication timestamp.
//
// A candidate is accepted only when its primary heading matches the
// expected headline exactly (after normalization), a timestamp can be found
// in its body text, and that timestamp falls within query.Tolerance days of
// the feed date.
//
// See docs/ARCHITECTURE § Candidate Validator.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/query"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// Reason classifies why a candidate was rejected.
type Reason string

const (
	ReasonFetch                Reason = "fetch"
	ReasonNoHeading            Reason = "no_heading"
	ReasonHeadlineMismatch     Reason = "headline_mismatch"
	ReasonNoTimestamp          Reason = "no_timestamp"
	ReasonUnparseableTimestamp Reason = "unparseable_timestamp"
	ReasonDateOutOfRange       Reason = "date_out_of_range"
)

// Rejection reports a candidate that failed validation. It is an expected
// outcome, not a failure of the pipeline.
type Rejection struct {
	Reason Reason
	URL    string
	Detail string
	Err    error
}

func (r *Rejection) Error() string {
	msg := fmt.Sprintf("rejected %s: %s", r.URL, r.Reason)
	if r.Detail != "" {
		msg += " (" + r.Detail + ")"
	}
	if r.Err != nil {
		msg += ": " + r.Err.Error()
	}
	return msg
}

func (r *Rejection) Unwrap() error { return r.Err }

// IsRejection reports whether err is a candidate rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// Fetcher retrieves a page. *httputil.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, params url.Values) (*httputil.Response, error)
}

// Expect describes the release a candidate must match.
type Expect struct {
	// Headline is the expected primary heading. Empty skips the check.
	Headline string

	// FeedDate is the feed's date text. When it parses, the extracted
	// timestamp must be within query.Tolerance days of it.
	FeedDate string
}

// Validator checks candidate pages.
type Validator struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// New returns a Validator that fetches pages through f.
func New(f Fetcher, logger zerolog.Logger) *Validator {
	return &Validator{fetcher: f, logger: logger}
}

// Validate fetches rawURL and checks it against want. It returns the
// accepted PRInfo, or types.NotFound with a *Rejection. The only other
// error is a cancelled context.
func (v *Validator) Validate(ctx context.Context, rawURL string, want Expect) (types.PRInfo, error) {
	resp, err := v.fetcher.Get(ctx, rawURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return types.NotFound, ctx.Err()
		}
		return v.reject(ReasonFetch, rawURL, "", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return v.reject(ReasonNoHeading, rawURL, "unparseable page", err)
	}

	if strings.TrimSpace(want.Headline) != "" {
		heading := PrimaryHeading(doc)
		if heading == "" {
			return v.reject(ReasonNoHeading, rawURL, "", nil)
		}
		if NormalizeHeadline(heading) != NormalizeHeadline(want.Headline) {
			return v.reject(ReasonHeadlineMismatch, rawURL, fmt.Sprintf("page heading %q", heading), nil)
		}
	}

	ts, ok := ExtractTimestamp(BodyText(doc))
	if !ok {
		return v.reject(ReasonNoTimestamp, rawURL, "", nil)
	}

	feedDate, haveFeedDate := query.ParseFeedDate(want.FeedDate)
	published, parsed := ParseTimestamp(ts)

	switch {
	case !parsed && haveFeedDate:
		return v.reject(ReasonUnparseableTimestamp, rawURL, ts.Raw, nil)
	case !parsed:
		v.logger.Debug().Str("url", rawURL).Str("raw", ts.Raw).Msg("timestamp not parseable; no feed date to check")
		return types.PRInfo{URL: rawURL, RawTimestamp: ts.Raw}, nil
	case haveFeedDate && !WithinTolerance(feedDate, published):
		return v.reject(ReasonDateOutOfRange, rawURL,
			fmt.Sprintf("published %s, feed date %s", published.Format("2006-01-02"), feedDate.Format("2006-01-02")), nil)
	}

	info := types.PRInfo{
		URL:          rawURL,
		RawTimestamp: ts.Raw,
		ISOTimestamp: FormatISO(published, ts.Zone),
	}
	v.logger.Info().Str("url", rawURL).Str("timestamp", info.ISOTimestamp).Msg("candidate accepted")
	return info, nil
}

func (v *Validator) reject(reason Reason, rawURL, detail string, err error) (types.PRInfo, error) {
	rej := &Rejection{Reason: reason, URL: rawURL, Detail: detail, Err: err}
	ev := v.logger.Debug()
	if reason == ReasonFetch {
		ev = v.logger.Warn()
	}
	ev.Str("url", rawURL).Str("reason", string(reason)).Str("detail", detail).AnErr("error", err).Msg("candidate rejected")
	return types.NotFound, rej
}

var headlineQuotes = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"‘", "'",
	"’", "'",
)

// NormalizeHeadline maps curly quotes to straight ones, lowercases,
// collapses whitespace runs to one space, and trims. It is idempotent.
func NormalizeHeadline(s string) string {
	s = headlineQuotes.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// PrimaryHeading returns the first non-empty <h1>, falling back to the
// page <title>. It returns "" when neither exists.
func PrimaryHeading(doc *goquery.Document) string {
	var heading string
	doc.Find("h1").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		heading = strings.TrimSpace(s.Text())
		return heading == ""
	})
	if heading != "" {
		return heading
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
