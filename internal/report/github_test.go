// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
		ok    bool
	}{
		{"https://github.com/acme-lab/supernet", "acme-lab", "supernet", true},
		{"http://github.com/acme-lab/supernet", "acme-lab", "supernet", true},
		{"https://github.com/acme-lab/supernet.git", "acme-lab", "supernet", true},
		{"https://github.com/acme-lab/supernet/tree/main/src", "acme-lab", "supernet", true},
		{"https://gitlab.com/acme-lab/supernet", "", "", false},
		{"https://github.com/acme-lab", "", "", false},
		{"not a url", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		owner, repo, ok := ParseGitHubURL(tt.url)
		if owner != tt.owner || repo != tt.repo || ok != tt.ok {
			t.Errorf("ParseGitHubURL(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.url, owner, repo, ok, tt.owner, tt.repo, tt.ok)
		}
	}
}

// newTestClient points a Client at a fake GitHub API server.
func newTestClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	gh := github.NewClient(nil)
	base, err := url.Parse(ts.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base
	return &Client{gh: gh}
}

func TestStats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme-lab/supernet", r.URL.Path)
		fmt.Fprint(w, `{
			"description": "Training code for SuperNet",
			"language": "Python",
			"stargazers_count": 321,
			"forks_count": 45,
			"subscribers_count": 12
		}`)
	}))
	defer ts.Close()

	st, err := newTestClient(t, ts).Stats(context.Background(), "acme-lab", "supernet")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "Training code for SuperNet", st.About)
	assert.Equal(t, "Python", st.Language)
	assert.Equal(t, 321, st.Stars)
	assert.Equal(t, 45, st.Forks)
	assert.Equal(t, 12, st.Watches)
	assert.False(t, st.FetchedAt.IsZero())
}

func TestStatsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer ts.Close()

	st, err := newTestClient(t, ts).Stats(context.Background(), "acme-lab", "gone")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestStatsRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1767225600")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts).Stats(context.Background(), "acme-lab", "supernet")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestStatsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(t, ts).Stats(context.Background(), "acme-lab", "supernet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching acme-lab/supernet")
}
