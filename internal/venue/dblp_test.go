// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dblpTOCHTML = `<html><body>
<ul class="publ-list">
<li class="entry editor toc">
  <cite class="data"><span class="title" itemprop="name">Proceedings of the IEEE International Conference on Robotics and Automation, ICRA 2025.</span></cite>
  <a href="https://doi.org/10.5555/PROCEEDINGS-2025">proceedings</a>
</li>
<li class="entry inproceedings">
  <cite class="data"><span class="title" itemprop="name">Learning Robot Dynamics with Contact Models.</span></cite>
  <a href="https://doi.org/10.1109/ICRA.2025.0001">via DOI</a>
</li>
<li class="entry inproceedings">
  <cite class="data"><span class="title" itemprop="name">Visual Servoing for Deformable Objects.</span></cite>
  <a href="https://doi.org/10.1109/ICRA.2025.0002">via DOI</a>
</li>
</ul>
</body></html>`

const arxivContactDynFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: search_query=ti:...</title>
  <entry>
    <id>http://arxiv.org/abs/2503.44444v2</id>
    <title>Learning Robot Dynamics with Contact Models</title>
    <summary>We model contact-rich dynamics. Our code is available at https://github.com/robo-lab/contact-dyn.</summary>
  </entry>
</feed>`

const arxivNoSummaryFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2503.55555v1</id>
    <title>Visual Servoing for Deformable Objects</title>
    <summary></summary>
  </entry>
</feed>`

const arxivMismatchFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2504.66666v1</id>
    <title>Graph Neural Networks for Molecules</title>
    <summary>Unrelated work.</summary>
  </entry>
</feed>`

const arxivEmptyFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"></feed>`

func newDBLPTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/db/conf/icra/icra2025.html":
			fmt.Fprint(w, dblpTOCHTML)
		case r.URL.Path == "/api/query":
			q := r.URL.Query().Get("search_query")
			switch {
			case strings.Contains(q, "Learning Robot Dynamics"):
				fmt.Fprint(w, arxivContactDynFeed)
			case strings.Contains(q, "Visual Servoing"):
				fmt.Fprint(w, arxivNoSummaryFeed)
			case strings.Contains(q, "Completely Unrelated"):
				fmt.Fprint(w, arxivMismatchFeed)
			default:
				fmt.Fprint(w, arxivEmptyFeed)
			}
		case r.URL.Path == "/abs/2503.55555":
			fmt.Fprint(w, arxivAbsWithCodeHTML)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newDBLPSource(ts *httptest.Server) *DBLP {
	return &DBLP{
		Venue:       "ICRA2025",
		TOCKey:      "conf/icra/icra2025",
		BaseURL:     ts.URL,
		DOIPrefix:   "https://doi.org/10.1109/ICRA",
		SkipHeading: "IEEE International Conference on Robotics",
		Fetcher:     newTestFetcher(ts),
	}
}

func TestDBLPListing(t *testing.T) {
	ts := newDBLPTestServer(t)
	defer ts.Close()

	stubs, err := newDBLPSource(ts).Listing(context.Background())
	require.NoError(t, err)

	// The proceedings heading is dropped; trailing periods stripped; DOI
	// links paired in order.
	require.Len(t, stubs, 2)
	assert.Equal(t, "Learning Robot Dynamics with Contact Models", stubs[0].Title)
	assert.Equal(t, "https://doi.org/10.1109/ICRA.2025.0001", stubs[0].SourceRef)
	assert.Equal(t, "Visual Servoing for Deformable Objects", stubs[1].Title)
	assert.Equal(t, "https://doi.org/10.1109/ICRA.2025.0002", stubs[1].SourceRef)
}

func TestDBLPDetailCodeFromSearchAbstract(t *testing.T) {
	ts := newDBLPTestServer(t)
	defer ts.Close()
	restore := overrideArxiv(ts.URL)
	defer restore()

	rec, err := newDBLPSource(ts).Detail(context.Background(),
		stubRef("Learning Robot Dynamics with Contact Models", "https://doi.org/10.1109/ICRA.2025.0001"))
	require.NoError(t, err)

	assert.Equal(t, "https://doi.org/10.1109/ICRA.2025.0001", rec.PDFURL)
	assert.Equal(t, "http://arxiv.org/abs/2503.44444v2", rec.ArxivURL)
	assert.Equal(t, "https://github.com/robo-lab/contact-dyn", rec.CodeURL)
	assert.True(t, rec.CodeMentioned)
}

func TestDBLPDetailFetchesPageWhenNoSummary(t *testing.T) {
	ts := newDBLPTestServer(t)
	defer ts.Close()
	restore := overrideArxiv(ts.URL)
	defer restore()

	rec, err := newDBLPSource(ts).Detail(context.Background(),
		stubRef("Visual Servoing for Deformable Objects", "https://doi.org/10.1109/ICRA.2025.0002"))
	require.NoError(t, err)

	assert.Equal(t, "http://arxiv.org/abs/2503.55555v1", rec.ArxivURL)
	assert.Equal(t, "https://github.com/acme-lab/gamma-code", rec.CodeURL)
}

func TestDBLPDetailTitleMismatchDiscarded(t *testing.T) {
	ts := newDBLPTestServer(t)
	defer ts.Close()
	restore := overrideArxiv(ts.URL)
	defer restore()

	rec, err := newDBLPSource(ts).Detail(context.Background(),
		stubRef("Completely Unrelated Title About Something", "https://doi.org/10.1109/ICRA.2025.0003"))
	require.NoError(t, err)

	assert.Empty(t, rec.ArxivURL)
	assert.Empty(t, rec.CodeURL)
	assert.Equal(t, "https://doi.org/10.1109/ICRA.2025.0003", rec.PDFURL)
}

func TestDBLPDetailNoSearchHit(t *testing.T) {
	ts := newDBLPTestServer(t)
	defer ts.Close()
	restore := overrideArxiv(ts.URL)
	defer restore()

	rec, err := newDBLPSource(ts).Detail(context.Background(),
		stubRef("Obscure Workshop Paper Nobody Posted", ""))
	require.NoError(t, err)

	assert.Empty(t, rec.ArxivURL)
	assert.Empty(t, rec.PDFURL)
	assert.False(t, rec.CodeMentioned)
}
