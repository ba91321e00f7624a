// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venue implements harvest.Source for the supported conference
// platforms: CVF Open Access, PMLR, OJS, and DBLP.
package venue

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-scout/internal/harvest"
	"github.com/pdiddy/paper-scout/internal/httputil"
)

// Entry describes one registered venue.
type Entry struct {
	// Key is the venue identifier used on the command line and in venue
	// files (e.g. "cvpr2025").
	Key string

	// Platform names the proceedings site the venue is harvested from.
	Platform string

	build func(f *httputil.Fetcher, delay time.Duration) harvest.Source
}

// Platform base URLs. Declared as vars so tests can substitute httptest
// servers.
var (
	cvfBase     = "https://openaccess.thecvf.com"
	pmlrBase    = "https://proceedings.mlr.press"
	ojsAAAIBase = "https://ojs.aaai.org/index.php/AAAI"
	dblpBase    = "https://dblp.org"
)

// entries lists the supported venues in display order.
var entries = []Entry{
	{
		Key:      "cvpr2025",
		Platform: "CVF Open Access",
		build: func(f *httputil.Fetcher, delay time.Duration) harvest.Source {
			return &CVF{Venue: "CVPR2025", BaseURL: cvfBase, Fetcher: f, Delay: delay}
		},
	},
	{
		Key:      "iccv2025",
		Platform: "CVF Open Access",
		build: func(f *httputil.Fetcher, delay time.Duration) harvest.Source {
			return &CVF{Venue: "ICCV2025", BaseURL: cvfBase, Fetcher: f, Delay: delay}
		},
	},
	{
		Key:      "icml2025",
		Platform: "PMLR",
		build: func(f *httputil.Fetcher, delay time.Duration) harvest.Source {
			return &PMLR{Venue: "ICML2025", Volume: "v267", BaseURL: pmlrBase, Fetcher: f, Delay: delay}
		},
	},
	{
		Key:      "aaai2025",
		Platform: "OJS",
		build: func(f *httputil.Fetcher, delay time.Duration) harvest.Source {
			return &OJS{Venue: "AAAI2025", JournalURL: ojsAAAIBase, Volume: 39, Fetcher: f, Delay: delay}
		},
	},
	{
		Key:      "icra2025",
		Platform: "DBLP",
		build: func(f *httputil.Fetcher, delay time.Duration) harvest.Source {
			return &DBLP{
				Venue:       "ICRA2025",
				TOCKey:      "conf/icra/icra2025",
				BaseURL:     dblpBase,
				DOIPrefix:   "https://doi.org/10.1109/ICRA",
				SkipHeading: "IEEE International Conference on Robotics",
				Fetcher:     f,
				Delay:       delay,
			}
		},
	},
}

// List returns the registered venues in display order.
func List() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// New returns the source registered under key. The delay throttles
// in-venue follow-up fetches (issue pages, arXiv lookups).
func New(key string, f *httputil.Fetcher, delay time.Duration) (harvest.Source, error) {
	for _, e := range entries {
		if e.Key == key {
			return e.build(f, delay), nil
		}
	}
	return nil, fmt.Errorf("unknown venue %q (see 'paper-scout venues')", key)
}

// pause sleeps for d unless the context ends first.
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

// parseHTML wraps goquery parsing of fetched page text.
func parseHTML(text string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(text))
}

// resolveURL resolves href against base the way a browser would. On any
// parse failure it returns href unchanged.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arxivAbsPattern recognizes links to arXiv abstract pages.
var arxivAbsPattern = regexp.MustCompile(`^https?://arxiv\.org/abs/`)

// arxivAbsLink returns the first link to an arXiv abstract page in doc,
// or "".
func arxivAbsLink(doc *goquery.Document) string {
	found := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if arxivAbsPattern.MatchString(href) {
			found = href
			return false
		}
		return true
	})
	return found
}
