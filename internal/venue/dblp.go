// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/repolink"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// DBLP harvests a conference's DBLP table of contents (ICRA). DBLP
// publishes titles and DOI links only, so code detection goes through an
// arXiv title search instead of a proceedings page.
type DBLP struct {
	// Venue is the display name ("ICRA2025").
	Venue string

	// TOCKey is the DBLP table-of-contents key ("conf/icra/icra2025").
	TOCKey  string
	BaseURL string

	// DOIPrefix selects the DOI links that belong to the conference's
	// papers.
	DOIPrefix string

	// SkipHeading drops the proceedings-volume entry itself, which DBLP
	// lists with the same markup as papers.
	SkipHeading string

	Fetcher *httputil.Fetcher

	// Delay precedes every arXiv API call and abstract-page fetch.
	Delay time.Duration
}

// Name returns the venue key.
func (d *DBLP) Name() string { return d.Venue }

// Listing pairs title spans with DOI links positionally: DBLP emits one
// DOI anchor per entry in the same order as the titles. Entries past the
// end of the DOI list keep an empty SourceRef.
func (d *DBLP) Listing(ctx context.Context) ([]types.PaperStub, error) {
	text, err := d.Fetcher.Fetch(ctx, fmt.Sprintf("%s/db/%s.html", d.BaseURL, d.TOCKey))
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return nil, fmt.Errorf("parsing contents: %w", err)
	}

	var titles []string
	doc.Find(`span.title[itemprop="name"]`).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSuffix(normalizeSpace(s.Text()), ".")
		if title == "" {
			return
		}
		if d.SkipHeading != "" && strings.Contains(title, d.SkipHeading) {
			return
		}
		titles = append(titles, title)
	})

	var dois []string
	doc.Find(fmt.Sprintf(`a[href^=%q]`, d.DOIPrefix)).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		dois = append(dois, href)
	})

	stubs := make([]types.PaperStub, len(titles))
	for i, title := range titles {
		stubs[i] = types.PaperStub{Title: title}
		if i < len(dois) {
			stubs[i].SourceRef = dois[i]
		}
	}
	return stubs, nil
}

// Detail searches arXiv for the exact title; the DOI link doubles as the
// PDF column. A paper without an arXiv match keeps only title and DOI,
// which is still an ok record. When the search hit carries no abstract,
// the abstract page itself is fetched for the code signals.
func (d *DBLP) Detail(ctx context.Context, stub types.PaperStub) (types.PaperRecord, error) {
	rec := types.PaperRecord{Title: stub.Title, PDFURL: stub.SourceRef, Status: types.StatusOK}

	if err := pause(ctx, d.Delay); err != nil {
		return types.PaperRecord{}, err
	}
	absURL, abstract, err := searchArxivByTitle(ctx, d.Fetcher, stub.Title)
	if err != nil {
		if ctx.Err() != nil {
			return types.PaperRecord{}, ctx.Err()
		}
		// The search is best effort; the record stands without it.
		return rec, nil
	}
	if absURL == "" {
		return rec, nil
	}
	rec.ArxivURL = absURL

	if abstract == "" {
		if err := pause(ctx, d.Delay); err != nil {
			return types.PaperRecord{}, err
		}
		if id := extractArxivID(absURL); id != "" {
			if text, fetchErr := d.Fetcher.Fetch(ctx, fmt.Sprintf("%s/abs/%s", arxivAbsBase, id)); fetchErr == nil {
				if doc, parseErr := parseHTML(text); parseErr == nil {
					abstract = strings.TrimSpace(doc.Find("blockquote.abstract").Text())
				}
				rec.CodeURL = repolink.ExtractRepoURL(text)
			}
		}
	}
	if rec.CodeURL == "" && abstract != "" {
		rec.CodeURL = repolink.ExtractRepoURL(abstract)
	}
	rec.CodeMentioned = repolink.MentionsCode(abstract)
	return rec, nil
}
