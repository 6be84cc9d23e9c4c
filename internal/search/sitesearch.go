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

// siteSearchPath is the publisher's internal search page, relative to its
// base URL.
const siteSearchPath = "/en/search"

// SiteSearch queries the publisher's own search page. It does not
// understand search operators, so only the query text is sent and the date
// window is ignored.
type SiteSearch struct {
	Client  *httputil.Client
	BaseURL string
	Site    query.Site
}

// Name returns the provider identifier.
func (s *SiteSearch) Name() string { return "site_search" }

// Available reports whether a publisher base URL is configured.
func (s *SiteSearch) Available() bool { return s.BaseURL != "" }

// Search returns release links from the publisher's results page,
// resolving relative links against the base URL.
func (s *SiteSearch) Search(ctx context.Context, q query.Query) ([]string, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, nil
	}

	searchURL := strings.TrimRight(s.BaseURL, "/") + siteSearchPath
	resp, err := s.Client.Get(ctx, searchURL, url.Values{"query": {text}})
	if err != nil {
		return nil, fmt.Errorf("site search request: %w", err)
	}
	return siteLinks(s.Site, s.BaseURL, resp.Body), nil
}

// RenderedSiteSearch is SiteSearch for result pages that are filled in by
// client-side scripts: the page is rendered by a headless browser before
// links are read.
type RenderedSiteSearch struct {
	Renderer Renderer
	BaseURL  string
	Site     query.Site
}

// Name returns the provider identifier.
func (r *RenderedSiteSearch) Name() string { return "rendered_site_search" }

// Available reports whether a renderer and base URL are configured.
func (r *RenderedSiteSearch) Available() bool {
	return r.Renderer != nil && r.BaseURL != ""
}

// Search renders the publisher's results page and returns its release links.
func (r *RenderedSiteSearch) Search(ctx context.Context, q query.Query) ([]string, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, nil
	}

	searchURL := strings.TrimRight(r.BaseURL, "/") + siteSearchPath + "?" + url.Values{"query": {text}}.Encode()
	html, err := r.Renderer.Render(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("rendering site search: %w", err)
	}
	return siteLinks(r.Site, r.BaseURL, []byte(html)), nil
}

// siteLinks extracts release links from a publisher page, resolving
// relative hrefs against baseURL.
func siteLinks(site query.Site, baseURL string, body []byte) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	var links []string
	for _, href := range anchors(body) {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		links = append(links, base.ResolveReference(ref).String())
	}
	return filterReleases(site, links)
}
