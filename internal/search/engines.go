// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/query"
)

// Search engine HTML endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	braveSearchBase = "https://search.brave.com/search"
	ddgSearchBase   = "https://duckduckgo.com/html/"
)

// Brave scrapes the Brave Search results page.
type Brave struct {
	Client *httputil.Client
	Site   query.Site
}

// Name returns the provider identifier.
func (b *Brave) Name() string { return "brave" }

// Available always reports true; no credentials are needed.
func (b *Brave) Available() bool { return true }

// Search returns absolute release links found on the results page.
// Relative links point back into Brave itself and are ignored.
func (b *Brave) Search(ctx context.Context, q query.Query) ([]string, error) {
	resp, err := b.Client.Get(ctx, braveSearchBase, url.Values{"q": {query.Build(b.Site, q)}})
	if err != nil {
		return nil, fmt.Errorf("Brave search request: %w", err)
	}

	var links []string
	for _, href := range anchors(resp.Body) {
		if strings.HasPrefix(href, "http") {
			links = append(links, href)
		}
	}
	return filterReleases(b.Site, links), nil
}

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	Client *httputil.Client
	Site   query.Site
}

// Name returns the provider identifier.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Available always reports true; no credentials are needed.
func (d *DuckDuckGo) Available() bool { return true }

// Search returns release links from the results page, unwrapping
// DuckDuckGo's /l/?uddg= redirect links.
func (d *DuckDuckGo) Search(ctx context.Context, q query.Query) ([]string, error) {
	resp, err := d.Client.Get(ctx, ddgSearchBase, url.Values{"q": {query.Build(d.Site, q)}})
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo search request: %w", err)
	}

	var links []string
	for _, href := range anchors(resp.Body) {
		if target := ddgTarget(href); target != "" {
			links = append(links, target)
			continue
		}
		links = append(links, href)
	}
	return filterReleases(d.Site, links), nil
}

// ddgTarget decodes a DuckDuckGo redirect link ("/l/?kh=-1&uddg=<encoded>")
// to its destination. It returns "" for anything else.
func ddgTarget(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.Host != "" && !strings.Contains(u.Host, "duckduckgo.com") {
		return ""
	}
	if !strings.HasPrefix(u.Path, "/l/") && !strings.HasPrefix(u.Path, "/r/") {
		return ""
	}
	params := u.Query()
	target := params.Get("uddg")
	if target == "" {
		target = params.Get("u")
	}
	// Query() already unescaped once; some links are double-encoded.
	if strings.Contains(target, "%") {
		if unescaped, err := url.PathUnescape(target); err == nil {
			target = unescaped
		}
	}
	return target
}
