// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared HTTP client used by every provider
// and the candidate validator.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the backoff base used by DoWithRetry and by clients
// built without one. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxAttempts = 3

// retryableStatus lists the transient statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Retryable reports whether a response with the given status should be
// retried.
func Retryable(status int) bool {
	return retryableStatus[status]
}

// idempotent reports whether requests with method may be re-sent.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, "":
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request and retries idempotent requests on
// 429, 500, 502, 503 and 504 with exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt: 0.5 s, 1 s, 2 s, ...
//
// maxAttempts counts the first try; 0 selects the default (3). Transport
// errors are returned immediately. On each retryable response the body is
// drained and closed before sleeping. If the context is cancelled during a
// backoff wait the function returns ctx.Err(). After exhausting attempts the
// last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	return doWithRetry(ctx, client, req, maxAttempts, RetryBaseDelay)
}

func doWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int, baseDelay time.Duration) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if !idempotent(req.Method) {
		maxAttempts = 1
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt+1 >= maxAttempts {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * baseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
