// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/release-resolver/internal/httputil"
	"github.com/pdiddy/release-resolver/internal/query"
	"github.com/pdiddy/release-resolver/pkg/types"
)

var gnw = query.Site{Domain: "globenewswire.com", ReleasePath: "news-release"}

const (
	releaseA = "https://www.globenewswire.com/news-release/2023/03/31/1/0/en/Acme-Corp-Announces-Results.html"
	releaseB = "https://www.globenewswire.com/en/news-release/2023/03/30/2/0/en/Acme-Other.html"
)

// --- mock provider ---

type mockProvider struct {
	name      string
	available bool
	urls      []string
	err       error
	calls     int
}

func (m *mockProvider) Name() string    { return m.name }
func (m *mockProvider) Available() bool { return m.available }

func (m *mockProvider) Search(_ context.Context, _ query.Query) ([]string, error) {
	m.calls++
	return m.urls, m.err
}

func testClient(t *testing.T) *httputil.Client {
	t.Helper()
	c, err := httputil.NewClient(types.HTTPConfig{UserAgent: "test/0.1", MaxAttempts: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// substitute points *base at a test server for the duration of the test.
func substitute(t *testing.T, base *string, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := *base
	*base = ts.URL
	t.Cleanup(func() {
		*base = old
		ts.Close()
	})
	return ts
}

var acmeQuery = query.Query{
	Text:      "Acme Corp Announces Results",
	Ticker:    "ACME",
	UseTicker: true,
	Window:    query.Window{Start: "2023-03-29", End: "2023-04-02"},
}

// --- release URL shape ---

func TestIsRelease(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"release", releaseA, true},
		{"localized release", releaseB, true},
		{"other path", "https://www.globenewswire.com/search/keyword/acme", false},
		{"other host", "https://www.example.com/news-release/x.html", false},
		{"marker only in query", "https://www.globenewswire.com/search?q=news-release", false},
		{"relative", "/news-release/x.html", false},
		{"not http", "ftp://www.globenewswire.com/news-release/x", false},
		{"empty", "", false},
		{"upper case host", "https://WWW.GLOBENEWSWIRE.COM/news-release/x.html", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelease(gnw, tt.url))
		})
	}
}

func TestFilterReleases_DedupesAndKeepsOrder(t *testing.T) {
	in := []string{
		"https://www.example.com/other",
		releaseB,
		releaseA,
		" " + releaseB + " ",
		"https://www.globenewswire.com/about",
	}
	assert.Equal(t, []string{releaseB, releaseA}, filterReleases(gnw, in))
}

// --- chain ---

func TestChain_ProvidersSkipsUnavailable(t *testing.T) {
	keyed := &mockProvider{name: "keyed", available: false}
	html := &mockProvider{name: "html", available: true}
	site := &mockProvider{name: "site", available: true}

	chain := NewChain(zerolog.Nop(), keyed, html, site)
	got := chain.Providers()

	require.Len(t, got, 2)
	assert.Equal(t, "html", got[0].Name())
	assert.Equal(t, "site", got[1].Name())
	assert.Equal(t, 0, keyed.calls)
}

func TestChain_SearchSwallowsErrors(t *testing.T) {
	failing := &mockProvider{
		name:      "failing",
		available: true,
		err:       &httputil.TransportError{URL: "https://x", Err: errors.New("connection refused")},
	}
	chain := NewChain(zerolog.Nop(), failing)

	assert.Nil(t, chain.Search(context.Background(), failing, acmeQuery))
	assert.Equal(t, 1, failing.calls)
}

func TestChain_SearchReturnsCandidates(t *testing.T) {
	ok := &mockProvider{name: "ok", available: true, urls: []string{releaseA}}
	chain := NewChain(zerolog.Nop(), ok)
	assert.Equal(t, []string{releaseA}, chain.Search(context.Background(), ok, acmeQuery))
}

// --- Google CSE ---

func TestGoogleCSE_Search(t *testing.T) {
	var got url.Values
	substitute(t, &googleSearchBase, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[
			{"title":"Other","link":"https://www.example.com/acme"},
			{"title":"Acme","link":%q},
			{"title":"Acme again","link":%q}
		]}`, releaseA, releaseA)
	})

	g := &GoogleCSE{Client: testClient(t), APIKey: "k", CX: "cx", Site: gnw}
	require.True(t, g.Available())

	urls, err := g.Search(context.Background(), acmeQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{releaseA}, urls)
	assert.Equal(t, "k", got.Get("key"))
	assert.Equal(t, "cx", got.Get("cx"))
	assert.Equal(t, "10", got.Get("num"))
	assert.Equal(t, query.Build(gnw, acmeQuery), got.Get("q"))
}

func TestGoogleCSE_UnavailableWithoutCredentials(t *testing.T) {
	var calls int32
	substitute(t, &googleSearchBase, func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	for _, g := range []*GoogleCSE{
		{Client: testClient(t), Site: gnw},
		{Client: testClient(t), APIKey: "k", Site: gnw},
		{Client: testClient(t), CX: "cx", Site: gnw},
	} {
		assert.False(t, g.Available())
		urls, err := g.Search(context.Background(), acmeQuery)
		assert.NoError(t, err)
		assert.Empty(t, urls)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGoogleCSE_MalformedJSONIsEmpty(t *testing.T) {
	substitute(t, &googleSearchBase, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	var logs bytes.Buffer
	g := &GoogleCSE{Client: testClient(t), APIKey: "k", CX: "cx", Site: gnw, Logger: zerolog.New(&logs)}
	urls, err := g.Search(context.Background(), acmeQuery)
	assert.NoError(t, err)
	assert.Empty(t, urls)
	assert.Contains(t, logs.String(), "could not decode Google CSE response")
}

func TestGoogleCSE_HTTPErrorIsFetchError(t *testing.T) {
	substitute(t, &googleSearchBase, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	g := &GoogleCSE{Client: testClient(t), APIKey: "k", CX: "cx", Site: gnw}
	_, err := g.Search(context.Background(), acmeQuery)
	require.Error(t, err)
	assert.True(t, httputil.IsFetchError(err))
}

// --- HTML engines ---

func TestBrave_Search(t *testing.T) {
	var gotQ string
	substitute(t, &braveSearchBase, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		fmt.Fprintf(w, `<html><body>
			<a href="/ask?q=acme">Ask</a>
			<a href="/news-release/local">Brave-relative</a>
			<div class="snippet"><a href=%q>Acme Corp Announces Results</a></div>
			<a href="https://www.example.com/acme">Elsewhere</a>
		</body></html>`, releaseA)
	})

	b := &Brave{Client: testClient(t), Site: gnw}
	urls, err := b.Search(context.Background(), acmeQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{releaseA}, urls)
	assert.True(t, strings.HasPrefix(gotQ, "site:globenewswire.com/news-release "))
}

func TestBrave_NoResultsMarkup(t *testing.T) {
	substitute(t, &braveSearchBase, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Please solve the captcha</p></body></html>`)
	})

	b := &Brave{Client: testClient(t), Site: gnw}
	urls, err := b.Search(context.Background(), acmeQuery)
	assert.NoError(t, err)
	assert.Empty(t, urls)
}

func TestDuckDuckGo_Search(t *testing.T) {
	redirect := "/l/?kh=-1&uddg=" + url.QueryEscape(releaseB)
	substitute(t, &ddgSearchBase, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<a class="result__a" href=%q>Redirected</a>
			<a class="result__a" href=%q>Direct</a>
			<a href="/html/?q=next">Next</a>
		</body></html>`, redirect, releaseA)
	})

	d := &DuckDuckGo{Client: testClient(t), Site: gnw}
	urls, err := d.Search(context.Background(), acmeQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{releaseB, releaseA}, urls)
}

func TestDdgTarget(t *testing.T) {
	encoded := url.QueryEscape(releaseA)
	tests := []struct {
		name string
		href string
		want string
	}{
		{"uddg", "/l/?kh=-1&uddg=" + encoded, releaseA},
		{"protocol relative", "//duckduckgo.com/l/?uddg=" + encoded, releaseA},
		{"double encoded", "/l/?uddg=" + url.QueryEscape(encoded), releaseA},
		{"u param", "/r/?u=" + encoded, releaseA},
		{"direct link", releaseA, ""},
		{"other redirect host", "https://example.com/l/?uddg=" + encoded, ""},
		{"navigation", "/html/?q=x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ddgTarget(tt.href))
		})
	}
}

// --- site search ---

func TestSiteSearch_Search(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprint(w, `<html><body>
			<a href="/en/news-release/2023/03/31/1/0/en/Acme.html">Acme</a>
			<a href="/en/search?page=2">Next</a>
		</body></html>`)
	}))
	defer ts.Close()

	host := strings.TrimPrefix(ts.URL, "http://")
	s := &SiteSearch{
		Client:  testClient(t),
		BaseURL: ts.URL,
		Site:    query.Site{Domain: strings.Split(host, ":")[0], ReleasePath: "news-release"},
	}

	urls, err := s.Search(context.Background(), acmeQuery)
	require.NoError(t, err)

	assert.Equal(t, []string{ts.URL + "/en/news-release/2023/03/31/1/0/en/Acme.html"}, urls)
	assert.Equal(t, "/en/search", gotPath)
	assert.Equal(t, "Acme Corp Announces Results", gotQuery)
}

func TestSiteSearch_EmptyTextSkipsRequest(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	s := &SiteSearch{Client: testClient(t), BaseURL: ts.URL, Site: gnw}
	urls, err := s.Search(context.Background(), query.Query{Text: "  "})
	assert.NoError(t, err)
	assert.Empty(t, urls)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

type fakeRenderer struct {
	html   string
	err    error
	gotURL string
}

func (f *fakeRenderer) Render(_ context.Context, u string) (string, error) {
	f.gotURL = u
	return f.html, f.err
}

func TestRenderedSiteSearch_Search(t *testing.T) {
	r := &fakeRenderer{html: `<a href="/en/news-release/2023/03/31/1/0/en/Acme.html">Acme</a>`}
	s := &RenderedSiteSearch{Renderer: r, BaseURL: "https://www.globenewswire.com", Site: gnw}

	urls, err := s.Search(context.Background(), query.Query{Text: "Acme Corp"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://www.globenewswire.com/en/news-release/2023/03/31/1/0/en/Acme.html"}, urls)
	assert.Equal(t, "https://www.globenewswire.com/en/search?query=Acme+Corp", r.gotURL)
}

func TestRenderedSiteSearch_RenderError(t *testing.T) {
	r := &fakeRenderer{err: errors.New("browser crashed")}
	s := &RenderedSiteSearch{Renderer: r, BaseURL: "https://www.globenewswire.com", Site: gnw}

	_, err := s.Search(context.Background(), query.Query{Text: "Acme"})
	assert.Error(t, err)
}

// --- provider list ---

func TestProviders_Order(t *testing.T) {
	cfg := types.DefaultConfig()
	client := testClient(t)

	got := Providers(cfg, client, nil, zerolog.Nop())
	var names []string
	for _, p := range got {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"google_cse", "brave", "duckduckgo", "site_search"}, names)
	assert.False(t, got[0].Available(), "keyed API needs credentials")

	cfg.Search.EnableBrowser = true
	cfg.Search.GoogleAPIKey = "k"
	cfg.Search.GoogleSearchCX = "cx"
	got = Providers(cfg, client, &fakeRenderer{}, zerolog.Nop())
	require.Len(t, got, 5)
	assert.Equal(t, "rendered_site_search", got[4].Name())
	assert.True(t, got[0].Available())
}
