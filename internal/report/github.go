// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// ErrRateLimited reports that the GitHub API refused further requests
// for this run. Cached statistics still render.
var ErrRateLimited = errors.New("github rate limit exceeded")

// githubURLPattern splits a repository URL into owner and repo,
// tolerating a .git suffix and trailing path segments.
var githubURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/.*)?$`)

// RepoStats holds the repository statistics rendered into the report
// table.
type RepoStats struct {
	About     string
	Language  string
	Stars     int
	Forks     int
	Watches   int
	FetchedAt time.Time
}

// ParseGitHubURL returns the owner and repository named by a GitHub
// URL. ok is false for anything else (gitlab, huggingface, garbage).
func ParseGitHubURL(rawURL string) (owner, repo string, ok bool) {
	m := githubURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Client resolves repository statistics through the GitHub API.
type Client struct {
	gh *github.Client
}

// NewClient builds the GitHub API client. An empty token leaves the
// client unauthenticated at the anonymous rate limit.
func NewClient(ctx context.Context, token, userAgent string, timeout time.Duration) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = timeout

	gh := github.NewClient(hc)
	if userAgent != "" {
		gh.UserAgent = userAgent
	}
	return &Client{gh: gh}
}

// Stats fetches statistics for owner/repo. A repository that no longer
// exists returns (nil, nil); rate-limit exhaustion returns
// ErrRateLimited.
func (c *Client) Stats(ctx context.Context, owner, repo string) (*RepoStats, error) {
	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			return nil, fmt.Errorf("%w (resets %s)", ErrRateLimited,
				rateErr.Rate.Reset.Time.Format(time.Kitchen))
		}
		var abuseErr *github.AbuseRateLimitError
		if errors.As(err, &abuseErr) {
			return nil, ErrRateLimited
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching %s/%s: %w", owner, repo, err)
	}

	return &RepoStats{
		About:     r.GetDescription(),
		Language:  r.GetLanguage(),
		Stars:     r.GetStargazersCount(),
		Forks:     r.GetForksCount(),
		Watches:   r.GetSubscribersCount(),
		FetchedAt: time.Now().UTC(),
	}, nil
}
