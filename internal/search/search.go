// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns queries into candidate publisher release URLs using
// a ranked chain of providers: a keyed search API, two HTML search engines,
// and the publisher's own site search.
//
// See docs/ARCHITECTURE § Provider Adapters.
package search

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/query"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// Provider looks up candidate release URLs for one query. Each provider
// (keyed API, HTML engine, site search) implements this interface per the
// Strategy pattern.
//
// Search returns release URLs in provider rank order. Missing or changed
// markup yields an empty slice; only fetch failures are returned as errors.
type Provider interface {
	Name() string
	// Available reports whether the provider can be attempted at all, e.g.
	// whether its credentials are configured.
	Available() bool
	Search(ctx context.Context, q query.Query) ([]string, error)
}

// IsRelease reports whether rawURL points at a release page of site: the
// host contains the publisher domain and the path contains the release
// marker.
func IsRelease(site query.Site, rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.Contains(strings.ToLower(u.Host), strings.ToLower(site.Domain)) {
		return false
	}
	return strings.Contains(u.Path, site.ReleasePath)
}

// filterReleases keeps release URLs of site, dropping duplicates while
// preserving order.
func filterReleases(site query.Site, urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if seen[u] || !IsRelease(site, u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// anchors returns every href on the page, in document order. Unparseable
// markup yields nil.
func anchors(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && strings.TrimSpace(href) != "" {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})
	return hrefs
}

// Chain runs queries through providers in priority order.
type Chain struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewChain returns a chain over providers in the given priority order.
func NewChain(logger zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

// Providers returns the providers that can be attempted, in priority order.
// Unavailable providers are skipped silently.
func (c *Chain) Providers() []Provider {
	var out []Provider
	for _, p := range c.providers {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// Search runs q through p. Provider errors are logged and reported as no
// result so the caller can move on to the next provider.
func (c *Chain) Search(ctx context.Context, p Provider, q query.Query) []string {
	urls, err := p.Search(ctx, q)
	if err != nil {
		ev := c.logger.Warn()
		if !httputil.IsFetchError(err) {
			ev = c.logger.Error()
		}
		ev.Err(err).Str("provider", p.Name()).Msg("provider failed; continuing")
		return nil
	}
	c.logger.Debug().Str("provider", p.Name()).Int("candidates", len(urls)).Msg("provider returned")
	return urls
}

// Renderer produces the HTML of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Providers builds the standard provider list from cfg, in priority order.
// renderer may be nil; the rendered site search is added only when
// cfg.Search.EnableBrowser is set and a renderer is supplied.
func Providers(cfg types.Config, client *httputil.Client, renderer Renderer, logger zerolog.Logger) []Provider {
	site := query.Site{Domain: cfg.Publisher.Domain, ReleasePath: cfg.Publisher.ReleasePath}
	providers := []Provider{
		&GoogleCSE{Client: client, APIKey: cfg.Search.GoogleAPIKey, CX: cfg.Search.GoogleSearchCX, Site: site, Logger: logger},
		&Brave{Client: client, Site: site},
		&DuckDuckGo{Client: client, Site: site},
		&SiteSearch{Client: client, BaseURL: cfg.Publisher.BaseURL, Site: site},
	}
	if cfg.Search.EnableBrowser && renderer != nil {
		providers = append(providers, &RenderedSiteSearch{Renderer: renderer, BaseURL: cfg.Publisher.BaseURL, Site: site})
	}
	return providers
}
