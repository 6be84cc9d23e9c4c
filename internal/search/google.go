// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/query"
)

// googleSearchBase is the Custom Search JSON API endpoint. Declared as a var
// so tests can substitute an httptest server.
var googleSearchBase = "https://www.googleapis.com/customsearch/v1"

// googleResultCount is requested per query so a release ranked below the
// first few hits is still seen.
const googleResultCount = 10

// GoogleCSE queries the Google Custom Search JSON API. It is unavailable
// unless both APIKey and CX are set.
type GoogleCSE struct {
	Client *httputil.Client
	APIKey string
	CX     string
	Site   query.Site
	Logger zerolog.Logger
}

// Name returns the provider identifier.
func (g *GoogleCSE) Name() string { return "google_cse" }

// Available reports whether credentials are configured.
func (g *GoogleCSE) Available() bool {
	return g.APIKey != "" && g.CX != ""
}

// Search runs the query through the API and returns release links.
func (g *GoogleCSE) Search(ctx context.Context, q query.Query) ([]string, error) {
	if !g.Available() {
		return nil, nil
	}

	params := url.Values{
		"key": {g.APIKey},
		"cx":  {g.CX},
		"q":   {query.Build(g.Site, q)},
		"num": {fmt.Sprintf("%d", googleResultCount)},
	}

	resp, err := g.Client.Get(ctx, googleSearchBase, params)
	if err != nil {
		return nil, fmt.Errorf("Google CSE request: %w", err)
	}

	var gr googleResponse
	if err := json.Unmarshal(resp.Body, &gr); err != nil {
		// Quota and error pages sometimes come back as 200 with HTML.
		g.Logger.Warn().Err(err).Str("provider", g.Name()).Int("bytes", len(resp.Body)).
			Msg("could not decode Google CSE response")
		return nil, nil
	}

	links := make([]string, 0, len(gr.Items))
	for _, item := range gr.Items {
		links = append(links, item.Link)
	}
	return filterReleases(g.Site, links), nil
}

// Custom Search JSON API structures.
type googleResponse struct {
	Items []googleItem `json:"items"`
}

type googleItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
