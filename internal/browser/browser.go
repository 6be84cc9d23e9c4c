// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser renders pages in a headless Chromium via Playwright, for
// publisher search pages whose results are filled in by client-side
// scripts.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"
)

// settleDelay gives client-side scripts time to populate results after
// DOMContentLoaded.
const settleDelay = 2 * time.Second

// Renderer drives one headless browser for the life of the process. The
// browser is started on the first Render call.
type Renderer struct {
	userAgent string
	timeout   time.Duration
	logger    zerolog.Logger

	mu      sync.Mutex
	pw      *pw.Playwright
	browser pw.Browser
}

// New returns a Renderer. timeout bounds each page navigation.
func New(userAgent string, timeout time.Duration, logger zerolog.Logger) *Renderer {
	return &Renderer{userAgent: userAgent, timeout: timeout, logger: logger}
}

func (r *Renderer) start() error {
	if r.browser != nil {
		return nil
	}
	p, err := pw.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}
	b, err := p.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	})
	if err != nil {
		p.Stop()
		return fmt.Errorf("launching chromium: %w", err)
	}
	r.pw, r.browser = p, b
	r.logger.Debug().Msg("headless browser started")
	return nil
}

// Render loads pageURL in a fresh browser context and returns the rendered
// HTML.
func (r *Renderer) Render(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.start(); err != nil {
		return "", err
	}

	bctx, err := r.browser.NewContext(pw.BrowserNewContextOptions{
		UserAgent: pw.String(r.userAgent),
	})
	if err != nil {
		return "", fmt.Errorf("creating browser context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}

	if _, err := page.Goto(pageURL, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(float64(r.timeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", pageURL, err)
	}
	page.WaitForTimeout(float64(settleDelay.Milliseconds()))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}
	return html, nil
}

// Close shuts the browser down. It is safe to call when Render was never
// called.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	if err := r.browser.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("closing browser")
	}
	err := r.pw.Stop()
	r.browser, r.pw = nil, nil
	if err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	return nil
}
