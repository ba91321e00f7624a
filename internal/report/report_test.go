// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const sampleCSV = `title,pdf_url,arxiv_url,code_available,code_url
"Alpha Paper",https://cvf.example/alpha.pdf,https://arxiv.org/abs/2501.11111,yes,https://github.com/acme-lab/alpha-code
"Beta Paper",https://cvf.example/beta.pdf,,maybe,
"Gamma; ""quoted"" Paper",https://cvf.example/gamma.pdf,,yes,https://github.com/acme-lab/gamma-code
Delta | Systems,,,yes,https://gitlab.com/acme/delta
`

func writeSampleCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "cvpr2025_papers.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

// newGitHubAPIServer serves one live repository and one deleted one.
func newGitHubAPIServer(t *testing.T, alphaCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme-lab/alpha-code":
			atomic.AddInt32(alphaCalls, 1)
			fmt.Fprint(w, `{
				"description": "Alpha | training code",
				"language": "Go",
				"stargazers_count": 42,
				"forks_count": 7,
				"subscribers_count": 3
			}`)
		case "/repos/acme-lab/gamma-code":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestReadRows(t *testing.T) {
	path := writeSampleCSV(t, t.TempDir())

	rows, err := ReadRows(path)
	require.NoError(t, err)

	// Beta has no code URL and is dropped.
	require.Len(t, rows, 3)
	assert.Equal(t, Row{
		Title:    "Alpha Paper",
		PDFURL:   "https://cvf.example/alpha.pdf",
		ArxivURL: "https://arxiv.org/abs/2501.11111",
		CodeURL:  "https://github.com/acme-lab/alpha-code",
	}, rows[0])
	assert.Equal(t, `Gamma; "quoted" Paper`, rows[1].Title)
	assert.Equal(t, "Delta | Systems", rows[2].Title)
	assert.Equal(t, "https://gitlab.com/acme/delta", rows[2].CodeURL)
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeSampleCSV(t, dir)

	var alphaCalls int32
	ts := newGitHubAPIServer(t, &alphaCalls)
	defer ts.Close()

	var log bytes.Buffer
	err := Generate(context.Background(), newTestClient(t, ts), csvPath, types.ReportConfig{}, &log)
	require.NoError(t, err)

	assert.Contains(t, log.String(), "Found 3 papers with code URLs")
	assert.Contains(t, log.String(), "No GitHub token")
	assert.Contains(t, log.String(), "[1/3] Fetching acme-lab/alpha-code...")
	assert.Contains(t, log.String(), "repo not found: acme-lab/gamma-code")
	assert.Contains(t, log.String(), "Cache hits: 0, API calls: 1")
	assert.EqualValues(t, 1, atomic.LoadInt32(&alphaCalls))

	md, err := os.ReadFile(filepath.Join(dir, "readme.md"))
	require.NoError(t, err)
	want := "| title | code | about | language | stars | forks | watches | paper |\n" +
		"|-------|------|-------|----------|-------|-------|---------|-------|\n" +
		"| Alpha Paper | [code](https://github.com/acme-lab/alpha-code) | Alpha \\| training code | Go | 42 | 7 | 3 | [pdf](https://cvf.example/alpha.pdf) |\n" +
		"| Gamma; \"quoted\" Paper | [code](https://github.com/acme-lab/gamma-code) |  |  |  |  |  | [pdf](https://cvf.example/gamma.pdf) |\n" +
		"| Delta \\| Systems | [code](https://gitlab.com/acme/delta) |  |  |  |  |  |  |\n"
	assert.Equal(t, want, string(md))
}

func TestGenerateUsesCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeSampleCSV(t, dir)

	var alphaCalls int32
	ts := newGitHubAPIServer(t, &alphaCalls)
	defer ts.Close()
	c := newTestClient(t, ts)

	require.NoError(t, Generate(context.Background(), c, csvPath, types.ReportConfig{}, io.Discard))

	var log bytes.Buffer
	require.NoError(t, Generate(context.Background(), c, csvPath, types.ReportConfig{}, &log))

	// Alpha comes from the cache; the missing repo is probed again
	// because misses are never cached.
	assert.Contains(t, log.String(), "Cache hits: 1, API calls: 0")
	assert.EqualValues(t, 1, atomic.LoadInt32(&alphaCalls))
}

func TestGenerateStopsOnRateLimit(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "icml2025_papers.csv")
	csvContent := "title,pdf_url,arxiv_url,code_available,code_url\n" +
		"\"First\",,,yes,https://github.com/acme-lab/first\n" +
		"\"Second\",,,yes,https://github.com/acme-lab/second\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0o644))

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1767225600")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))
	defer ts.Close()

	var log bytes.Buffer
	err := Generate(context.Background(), newTestClient(t, ts), csvPath, types.ReportConfig{Token: "x"}, &log)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Contains(t, log.String(), "Using GitHub token")
	assert.Contains(t, log.String(), "using cached data for the rest")
	assert.Contains(t, log.String(), "Cache hits: 0, API calls: 0")

	// The report still renders every row, just without statistics.
	md, err := os.ReadFile(filepath.Join(dir, "readme.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "| First | [code](https://github.com/acme-lab/first) |")
	assert.Contains(t, string(md), "| Second | [code](https://github.com/acme-lab/second) |")
}

func TestGenerateMissingCSV(t *testing.T) {
	err := Generate(context.Background(), nil, filepath.Join(t.TempDir(), "nope.csv"),
		types.ReportConfig{}, io.Discard)
	require.Error(t, err)
}
