// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/repolink"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// galleyPattern matches OJS galley links (/article/view/<id>/<galley>),
// which carry the PDF when no .pdf suffix is present.
var galleyPattern = regexp.MustCompile(`/article/view/\d+/\d+$`)

// OJS harvests a conference volume published on Open Journal Systems
// (AAAI). The proceedings span many issues, so the listing walks the
// issue archive and collects article titles from every issue of the
// volume.
type OJS struct {
	// Venue is the display name ("AAAI2025").
	Venue string

	// JournalURL is the OJS journal root
	// ("https://ojs.aaai.org/index.php/AAAI").
	JournalURL string

	// Volume selects which "Vol. N" issues belong to the venue.
	Volume  int
	Fetcher *httputil.Fetcher

	// Delay separates consecutive issue-page fetches and the arXiv
	// fallback fetch.
	Delay time.Duration
}

// Name returns the venue key.
func (o *OJS) Name() string { return o.Venue }

// Listing walks the issue archive, keeps the issues of the configured
// volume, and collects article titles from each issue page in document
// order. Issue links and titles are deduplicated keeping the first
// occurrence. Stray anchors shorter than a plausible title or labeled
// PDF/Abstract are dropped.
func (o *OJS) Listing(ctx context.Context) ([]types.PaperStub, error) {
	text, err := o.Fetcher.Fetch(ctx, o.JournalURL+"/issue/archive")
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return nil, fmt.Errorf("parsing issue archive: %w", err)
	}

	volPattern := regexp.MustCompile(fmt.Sprintf(`Vol\.?\s*%d\b`, o.Volume))
	var issueURLs []string
	seenIssues := map[string]bool{}
	doc.Find(`a[href*="/issue/view/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		href = resolveURL(o.JournalURL, href)
		if seenIssues[href] || !volPattern.MatchString(s.Text()) {
			return
		}
		seenIssues[href] = true
		issueURLs = append(issueURLs, href)
	})

	var stubs []types.PaperStub
	seenTitles := map[string]bool{}
	for i, issueURL := range issueURLs {
		if i > 0 {
			if err := pause(ctx, o.Delay); err != nil {
				return nil, err
			}
		}
		issueText, err := o.Fetcher.Fetch(ctx, issueURL)
		if err != nil {
			return nil, fmt.Errorf("fetching issue %s: %w", issueURL, err)
		}
		issueDoc, err := parseHTML(issueText)
		if err != nil {
			return nil, fmt.Errorf("parsing issue %s: %w", issueURL, err)
		}

		links := issueDoc.Find("h3.title a")
		if links.Length() == 0 {
			links = issueDoc.Find(`a[href*="/article/view/"]`)
		}
		links.Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			title := normalizeSpace(s.Text())
			if href == "" || len(title) < 10 ||
				strings.Contains(title, "PDF") || strings.Contains(title, "Abstract") {
				return
			}
			if seenTitles[title] {
				return
			}
			seenTitles[title] = true
			stubs = append(stubs, types.PaperStub{
				Title:     title,
				SourceRef: resolveURL(issueURL, href),
			})
		})
	}
	return stubs, nil
}

// Detail fetches the article page and extracts the PDF galley link, the
// abstract, the arXiv link, and code signals.
func (o *OJS) Detail(ctx context.Context, stub types.PaperStub) (types.PaperRecord, error) {
	text, err := o.Fetcher.Fetch(ctx, stub.SourceRef)
	if err != nil {
		return types.PaperRecord{}, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing article page: %w", err)
	}

	rec := types.PaperRecord{Title: stub.Title, Status: types.StatusOK}
	rec.PDFURL = ojsPDFLink(doc)
	rec.ArxivURL = arxivAbsLink(doc)

	abstract := ojsAbstract(doc)
	rec.CodeURL = repolink.ExtractRepoURL(text)
	if rec.CodeURL == "" && abstract != "" {
		rec.CodeURL = repolink.ExtractRepoURL(abstract)
	}
	rec.CodeMentioned = repolink.MentionsCode(abstract)

	if rec.CodeURL == "" && rec.ArxivURL != "" {
		if err := pause(ctx, o.Delay); err != nil {
			return types.PaperRecord{}, err
		}
		rec.CodeURL = codeFromArxiv(ctx, o.Fetcher, rec.ArxivURL)
	}
	return rec, nil
}

// ojsPDFLink finds the PDF link on an article page: the pdf galley
// anchor, then any PDF-labeled galley link, then any .pdf href.
func ojsPDFLink(doc *goquery.Document) string {
	if href, ok := doc.Find("a.pdf").First().Attr("href"); ok {
		return href
	}
	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		label := strings.ToUpper(strings.TrimSpace(s.Text()))
		if strings.HasSuffix(strings.ToLower(href), ".pdf") ||
			(strings.Contains(label, "PDF") && galleyPattern.MatchString(href)) {
			found = href
			return false
		}
		return true
	})
	return found
}

// ojsAbstract pulls the abstract text: the abstract section's
// paragraphs, then any div.abstract, then the DC.Description meta tag.
func ojsAbstract(doc *goquery.Document) string {
	if ps := doc.Find("section.abstract p"); ps.Length() > 0 {
		var parts []string
		ps.Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if t := strings.TrimSpace(doc.Find("section.abstract").Text()); t != "" {
		return strings.TrimSpace(strings.TrimPrefix(t, "Abstract"))
	}
	if t := strings.TrimSpace(doc.Find("div.abstract").First().Text()); t != "" {
		return t
	}
	if desc, ok := doc.Find(`meta[name="DC.Description"]`).Attr("content"); ok {
		return strings.TrimSpace(desc)
	}
	return ""
}
