// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns a harvest CSV into a Markdown table of the
// papers that ship code, enriched with GitHub repository statistics.
package report

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const reportFile = "readme.md"

// Row is one harvest CSV record the report consumes.
type Row struct {
	Title    string
	PDFURL   string
	ArxivURL string
	CodeURL  string
}

// ReadRows loads a harvest CSV and returns the rows that carry a code
// URL; only those feed the report. Columns are located by header name,
// so column order does not matter.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for _, record := range records[1:] {
		row := Row{
			Title:    field(record, "title"),
			PDFURL:   field(record, "pdf_url"),
			ArxivURL: field(record, "arxiv_url"),
			CodeURL:  field(record, "code_url"),
		}
		if row.CodeURL == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Generate reads the harvest CSV at csvPath and writes readme.md next to
// it. Statistics come from the SQLite cache when present, otherwise from
// the GitHub API through c; fresh results are cached. Hitting the rate
// limit stops further API use for the run but keeps rendering, so the
// report is always complete with whatever data is on hand.
func Generate(ctx context.Context, c *Client, csvPath string, cfg types.ReportConfig, w io.Writer) error {
	rows, err := ReadRows(csvPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(csvPath)
	cache, err := OpenCache(filepath.Join(dir, cacheFile))
	if err != nil {
		return err
	}
	defer cache.Close()

	fmt.Fprintf(w, "Found %d papers with code URLs\n", len(rows))
	if cfg.Token != "" {
		fmt.Fprintln(w, "Using GitHub token (rate limit: 5000/hour)")
	} else {
		fmt.Fprintln(w, "No GitHub token (rate limit: 60/hour). Set GITHUB_TOKEN to increase.")
	}

	stats := make(map[string]*RepoStats)
	var cacheHits, apiCalls int
	rateLimited := false

	for i, row := range rows {
		owner, repo, ok := ParseGitHubURL(row.CodeURL)
		if !ok {
			continue
		}
		key := owner + "/" + repo

		st, err := cache.Get(ctx, key)
		if err != nil {
			return err
		}
		if st != nil {
			stats[row.CodeURL] = st
			cacheHits++
			continue
		}
		if rateLimited {
			continue
		}

		fmt.Fprintf(w, "[%d/%d] Fetching %s...\n", i+1, len(rows), key)
		st, err = c.Stats(ctx, owner, repo)
		switch {
		case errors.Is(err, ErrRateLimited):
			rateLimited = true
			fmt.Fprintf(w, "  %v; using cached data for the rest\n", err)
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "  warning: %v\n", err)
		case st == nil:
			fmt.Fprintf(w, "  repo not found: %s\n", key)
		default:
			if err := cache.Put(ctx, key, st); err != nil {
				return err
			}
			stats[row.CodeURL] = st
			apiCalls++
			if err := pause(ctx, cfg.RequestDelay); err != nil {
				return err
			}
		}
	}
	fmt.Fprintf(w, "Cache hits: %d, API calls: %d\n", cacheHits, apiCalls)

	outPath := filepath.Join(dir, reportFile)
	if err := writeMarkdown(outPath, rows, stats); err != nil {
		return err
	}
	fmt.Fprintf(w, "Generated %s with %d papers\n", outPath, len(rows))
	return nil
}

func writeMarkdown(path string, rows []Row, stats map[string]*RepoStats) error {
	var b strings.Builder
	b.WriteString("| title | code | about | language | stars | forks | watches | paper |\n")
	b.WriteString("|-------|------|-------|----------|-------|-------|---------|-------|\n")

	for _, row := range rows {
		codeLink := fmt.Sprintf("[code](%s)", row.CodeURL)
		paperLink := ""
		if row.PDFURL != "" {
			paperLink = fmt.Sprintf("[pdf](%s)", row.PDFURL)
		}

		var about, language, stars, forks, watches string
		if st := stats[row.CodeURL]; st != nil {
			about = escapeCell(st.About)
			language = st.Language
			stars = strconv.Itoa(st.Stars)
			forks = strconv.Itoa(st.Forks)
			watches = strconv.Itoa(st.Watches)
		}

		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escapeCell(row.Title), codeLink, about, language, stars, forks, watches, paperLink)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// escapeCell keeps cell text from breaking the Markdown table: pipes
// are escaped and newlines flattened to spaces.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
