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

// Listing-level link keys carried in PaperStub.Extra.
const (
	pmlrPDFKey      = "pdf_url"
	pmlrSoftwareKey = "software_url"
)

// PMLR harvests a Proceedings of Machine Learning Research volume
// (ICML). The volume index already carries PDF and software links per
// paper; the abstract page is only needed for code signals.
type PMLR struct {
	// Venue is the display name ("ICML2025").
	Venue string

	// Volume is the PMLR volume path segment ("v267").
	Volume  string
	BaseURL string
	Fetcher *httputil.Fetcher
	Delay   time.Duration
}

// Name returns the venue key.
func (p *PMLR) Name() string { return p.Venue }

// Listing fetches the volume index. Each div.paper block holds the title
// plus abs, Download PDF, and sometimes Software links.
func (p *PMLR) Listing(ctx context.Context) ([]types.PaperStub, error) {
	text, err := p.Fetcher.Fetch(ctx, fmt.Sprintf("%s/%s/", p.BaseURL, p.Volume))
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(text)
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	var stubs []types.PaperStub
	doc.Find("div.paper").Each(func(_ int, s *goquery.Selection) {
		title := normalizeSpace(s.Find("p.title").First().Text())
		if title == "" {
			return
		}
		stub := types.PaperStub{Title: title, Extra: map[string]string{}}
		s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			switch strings.TrimSpace(a.Text()) {
			case "abs":
				stub.SourceRef = href
			case "Download PDF":
				stub.Extra[pmlrPDFKey] = href
			case "Software":
				stub.Extra[pmlrSoftwareKey] = href
			}
		})
		stubs = append(stubs, stub)
	})
	return stubs, nil
}

// Detail builds the record from the listing-level links first: the
// software link counts as the code URL when it passes validation. The
// abstract page fills in the arXiv link and text signals; a failed
// abstract fetch leaves the listing-level fields standing rather than
// failing the record.
func (p *PMLR) Detail(ctx context.Context, stub types.PaperStub) (types.PaperRecord, error) {
	rec := types.PaperRecord{
		Title:  stub.Title,
		PDFURL: stub.Extra[pmlrPDFKey],
		Status: types.StatusOK,
	}
	if sw := stub.Extra[pmlrSoftwareKey]; sw != "" && repolink.IsValidRepo(sw) {
		rec.CodeURL = sw
	}

	var abstract string
	if stub.SourceRef != "" {
		if text, err := p.Fetcher.Fetch(ctx, resolveURL(p.BaseURL, stub.SourceRef)); err == nil {
			if doc, parseErr := parseHTML(text); parseErr == nil {
				abstract = strings.TrimSpace(doc.Find("div.abstract").First().Text())
				if abstract == "" {
					abstract = strings.TrimSpace(doc.Find("div#abstract").First().Text())
				}
				rec.ArxivURL = arxivAbsLink(doc)
				if rec.CodeURL == "" {
					rec.CodeURL = repolink.ExtractRepoURL(text)
				}
			}
		} else if ctx.Err() != nil {
			return types.PaperRecord{}, ctx.Err()
		}
	}

	if rec.CodeURL == "" && abstract != "" {
		rec.CodeURL = repolink.ExtractRepoURL(abstract)
	}
	rec.CodeMentioned = repolink.MentionsCode(abstract)

	if rec.CodeURL == "" && rec.ArxivURL != "" {
		if err := pause(ctx, p.Delay); err != nil {
			return types.PaperRecord{}, err
		}
		rec.CodeURL = codeFromArxiv(ctx, p.Fetcher, rec.ArxivURL)
	}
	return rec, nil
}
