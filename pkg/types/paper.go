// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Status is the terminal outcome recorded for one paper.
type Status string

const (
	// StatusOK means detail extraction completed, whether or not a code
	// repository was found.
	StatusOK Status = "ok"

	// StatusFetchFailed means the paper's page could not be fetched after
	// all attempts; the record carries only the listing title.
	StatusFetchFailed Status = "fetch_failed"
)

// PaperStub identifies a paper as discovered on a venue listing, before
// its detail page has been fetched.
type PaperStub struct {
	// Title as shown on the listing.
	Title string `json:"title"`

	// SourceRef is whatever reference the venue needs to locate the
	// paper's detail: a page URL or path, or a DOI link.
	SourceRef string `json:"source_ref,omitempty"`

	// Extra carries venue-specific fields already present on the listing
	// page (PMLR, for example, exposes PDF and software links there).
	// Never persisted.
	Extra map[string]string `json:"-"`
}

// PaperRecord is the durable per-paper result stored in the checkpoint
// and rendered into the output table.
type PaperRecord struct {
	Title string `json:"title"`

	// PDFURL links the paper's PDF, or the DOI landing page for venues
	// that publish no direct PDF link.
	PDFURL string `json:"pdf_url,omitempty"`

	// ArxivURL is the paper's arXiv abstract page, when one was found.
	ArxivURL string `json:"arxiv_url,omitempty"`

	// CodeURL is a validated code-repository URL, or empty when none was
	// found. Non-empty values passed repolink.IsValidRepo when stored and
	// are re-checked on every resume.
	CodeURL string `json:"code_url,omitempty"`

	// CodeMentioned reports the weaker signal: the text talks about
	// released code but no repository URL could be extracted.
	CodeMentioned bool `json:"code_mentioned"`

	Status Status `json:"status"`
}

// Checkpoint is the resumable progress of one harvest run.
type Checkpoint struct {
	// Processed holds one terminal record per listing entry, in listing
	// order.
	Processed []PaperRecord `json:"processed"`

	// LastIndex is the resume cursor: every listing index below it has a
	// record in Processed. Equal to len(Processed) at every durable save.
	LastIndex int `json:"last_index"`
}
