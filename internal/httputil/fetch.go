// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RetryDelay is the pause between fetch attempts for the same URL. Tests
// override this to avoid real sleeps.
var RetryDelay = 2 * time.Second

const defaultMaxAttempts = 3

// Fetcher retrieves page text over HTTP with bounded retries. It is the
// only component that performs page fetches; callers treat an exhausted
// fetch as terminal for the current record, never for the whole run.
type Fetcher struct {
	// Client performs the requests. The caller sets the per-attempt
	// timeout on it.
	Client *http.Client

	// UserAgent is sent with every request.
	UserAgent string

	// MaxAttempts is the number of tries per URL. Zero means the
	// default (3).
	MaxAttempts int

	// Log receives one line per failed attempt. Nil discards them.
	Log io.Writer
}

// Fetch retrieves url and returns the response body as text. A transport
// error, a non-2xx status, and a body read failure all count as failed
// attempts; attempts are separated by RetryDelay. After the last attempt
// the most recent failure is returned. Invalid UTF-8 in the body is
// replaced rather than rejected.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	log := f.Log
	if log == nil {
		log = io.Discard
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(RetryDelay):
			}
		}

		text, err := f.fetchOnce(ctx, url)
		if err == nil {
			return text, nil
		}
		lastErr = err
		fmt.Fprintf(log, "  fetch attempt %d/%d failed: %v\n", attempt, maxAttempts, err)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("fetching %s: %w", url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return strings.ToValidUTF8(string(body), "�"), nil
}
