// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

func init() {
	// Keep fetch retries fast in tests.
	httputil.RetryDelay = 1 * time.Millisecond
}

// newTestFetcher returns a single-attempt fetcher bound to the test
// server's client.
func newTestFetcher(ts *httptest.Server) *httputil.Fetcher {
	return &httputil.Fetcher{
		Client:      ts.Client(),
		UserAgent:   "paper-scout-test/0.1",
		MaxAttempts: 1,
	}
}

func stubRef(title, ref string) types.PaperStub {
	return types.PaperStub{Title: title, SourceRef: ref}
}

// overrideArxiv points the arXiv endpoints at the test server and
// returns a restore func.
func overrideArxiv(tsURL string) func() {
	oldAPI, oldAbs := arxivAPIBase, arxivAbsBase
	arxivAPIBase = tsURL + "/api/query"
	arxivAbsBase = tsURL
	return func() {
		arxivAPIBase = oldAPI
		arxivAbsBase = oldAbs
	}
}

func TestNewKnownVenues(t *testing.T) {
	f := &httputil.Fetcher{}
	for _, e := range List() {
		src, err := New(e.Key, f, 0)
		if err != nil {
			t.Errorf("New(%q) error: %v", e.Key, err)
			continue
		}
		if src.Name() == "" {
			t.Errorf("New(%q) source has empty name", e.Key)
		}
	}
}

func TestNewUnknownVenue(t *testing.T) {
	_, err := New("neurips1999", &httputil.Fetcher{}, 0)
	if err == nil {
		t.Fatal("New with unknown key should fail")
	}
}

func TestListIsStable(t *testing.T) {
	a, b := List(), List()
	if len(a) != len(b) {
		t.Fatalf("List() length changed between calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			t.Errorf("List()[%d] = %q then %q", i, a[i].Key, b[i].Key)
		}
	}
	// Mutating the returned slice must not affect the registry.
	a[0].Key = "mutated"
	if List()[0].Key == "mutated" {
		t.Error("List() exposes internal registry storage")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"root relative", "https://host.org/deep/page", "/content/x.html", "https://host.org/content/x.html"},
		{"document relative", "https://host.org/deep/page", "x.html", "https://host.org/deep/x.html"},
		{"absolute kept", "https://host.org", "https://other.org/y", "https://other.org/y"},
		{"bare host base", "https://host.org", "content/x.html", "https://host.org/content/x.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveURL(tt.base, tt.href); got != tt.want {
				t.Errorf("resolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	got := normalizeSpace("  Learning\n\t Robot   Dynamics ")
	if got != "Learning Robot Dynamics" {
		t.Errorf("normalizeSpace = %q", got)
	}
}
