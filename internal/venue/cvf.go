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

// CVF harvests a venue hosted on CVF Open Access (CVPR, ICCV). All CVF
// venues share one page layout.
type CVF struct {
	// Venue is the display name and listing path segment ("CVPR2025").
	Venue   string
	BaseURL string
	Fetcher *httputil.Fetcher

	// Delay separates the arXiv fallback fetch from the page fetch that
	// preceded it.
	Delay time.Duration
}

// Name returns the venue key.
func (c *CVF) Name() string { return c.Venue }

// Listing fetches the all-days listing and returns one stub per paper
// title link.
func (c *CVF) Listing(ctx context.Context) ([]types.PaperStub, error) {
	text, err := c.Fetcher.Fetch(ctx, fmt.Sprintf("%s/%s?day=all", c.BaseURL, c.Venue))
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	var stubs []types.PaperStub
	doc.Find("dt.ptitle a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		title := strings.TrimSpace(s.Text())
		if !ok || title == "" {
			return
		}
		stubs = append(stubs, types.PaperStub{Title: title, SourceRef: href})
	})
	return stubs, nil
}

// Detail fetches the paper page and extracts the PDF link, arXiv link,
// and code signals from the abstract. When the abstract yields no code
// URL but an arXiv link exists, the arXiv abstract page is consulted as
// a fallback after a pause.
func (c *CVF) Detail(ctx context.Context, stub types.PaperStub) (types.PaperRecord, error) {
	text, err := c.Fetcher.Fetch(ctx, resolveURL(c.BaseURL, stub.SourceRef))
	if err != nil {
		return types.PaperRecord{}, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing paper page: %w", err)
	}

	rec := types.PaperRecord{Title: stub.Title, Status: types.StatusOK}

	if pdf, ok := doc.Find(`meta[name="citation_pdf_url"]`).Attr("content"); ok {
		rec.PDFURL = pdf
	}
	rec.ArxivURL = arxivAbsLink(doc)

	abstract := strings.TrimSpace(doc.Find("div#abstract").Text())
	rec.CodeURL = repolink.ExtractRepoURL(abstract)
	rec.CodeMentioned = repolink.MentionsCode(abstract)

	if rec.CodeURL == "" && rec.ArxivURL != "" {
		if err := pause(ctx, c.Delay); err != nil {
			return types.PaperRecord{}, err
		}
		rec.CodeURL = codeFromArxiv(ctx, c.Fetcher, rec.ArxivURL)
	}
	return rec, nil
}
