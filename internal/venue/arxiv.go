// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/repolink"
)

// arXiv endpoints. Declared as vars so tests can substitute httptest
// servers.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivAbsBase = "https://arxiv.org"
)

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
}

// searchArxivByTitle queries the arXiv API for an exact-title match and
// returns the abstract page URL and abstract text. Empty results are not
// an error. A hit whose title does not share a 30-character prefix with
// the query in either direction is discarded as a false positive.
func searchArxivByTitle(ctx context.Context, f *httputil.Fetcher, title string) (absURL, abstract string, err error) {
	query := url.QueryEscape(`ti:"` + title + `"`)
	searchURL := fmt.Sprintf("%s?search_query=%s&max_results=1", arxivAPIBase, query)

	body, err := f.Fetch(ctx, searchURL)
	if err != nil {
		return "", "", err
	}

	var feed arxivFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return "", "", fmt.Errorf("parsing arXiv response: %w", err)
	}
	if len(feed.Entries) == 0 {
		return "", "", nil
	}

	entry := feed.Entries[0]
	entryURL := strings.TrimSpace(entry.ID)
	if !strings.Contains(entryURL, "/abs/") {
		return "", "", nil
	}
	if !titlesMatch(entry.Title, title) {
		return "", "", nil
	}
	return entryURL, strings.TrimSpace(entry.Summary), nil
}

// titlesMatch guards against the API returning a different paper: the
// first 30 characters of one title must appear in the other.
func titlesMatch(found, query string) bool {
	f := strings.ToLower(normalizeSpace(found))
	q := strings.ToLower(normalizeSpace(query))
	if f == "" || q == "" {
		return false
	}
	return strings.Contains(f, head(q, 30)) || strings.Contains(q, head(f, 30))
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// codeFromArxiv fetches the arXiv abstract page behind absURL and
// returns the first valid repository URL on it, or "". The fallback
// never fails a record: fetch errors yield "".
func codeFromArxiv(ctx context.Context, f *httputil.Fetcher, absURL string) string {
	id := extractArxivID(absURL)
	if id == "" {
		return ""
	}
	text, err := f.Fetch(ctx, fmt.Sprintf("%s/abs/%s", arxivAbsBase, id))
	if err != nil {
		return ""
	}
	return repolink.ExtractRepoURL(text)
}

// extractArxivID pulls the arXiv ID from an abstract URL
// (e.g. "https://arxiv.org/abs/2301.07041v1" yields "2301.07041").
func extractArxivID(absURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(absURL, prefix)
	if idx < 0 {
		return ""
	}
	id := absURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
