// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/pdiddy/release-resolver/internal/pace"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// maxBodyBytes caps how much of a page is read into memory.
const maxBodyBytes = 10 << 20

// Response is a fully read HTTP response.
type Response struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Body       []byte
}

// Client issues GET requests with a fixed identity, timeout, retry policy
// and fetch pacing. One Client is created at startup and shared by every
// provider and the validator.
type Client struct {
	http        *http.Client
	headers     http.Header
	maxAttempts int
	retryBase   time.Duration
	pacer       *pace.Pacer
}

// NewClient builds the shared client from cfg. pacer may be nil to disable
// spacing between requests. A zero cfg.RetryBaseDelay falls back to
// RetryBaseDelay.
func NewClient(cfg types.HTTPConfig, pacer *pace.Pacer) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = types.DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	headers.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Set("Upgrade-Insecure-Requests", "1")
	headers.Set("Cache-Control", "no-cache")

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		headers:     headers,
		maxAttempts: cfg.MaxAttempts,
		retryBase:   cfg.RetryBaseDelay,
		pacer:       pacer,
	}, nil
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Get fetches rawURL with params merged into its query string. Non-2xx
// statuses (after the retry policy) yield *StatusError; failures to obtain
// a response yield *TransportError.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	reqURL, err := withParams(rawURL, params)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	base := c.retryBase
	if base <= 0 {
		base = RetryBaseDelay
	}
	resp, err := doWithRetry(ctx, c.http, req, c.maxAttempts, base)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	finalURL := reqURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{URL: finalURL, StatusCode: resp.StatusCode, Body: body}, nil
}

// Close releases pooled connections. The client must not be used afterwards.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "?"), nil
}
