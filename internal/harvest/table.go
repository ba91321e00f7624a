// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// tableHeader is the fixed column set. The report stage looks columns up
// by these names.
const tableHeader = "title,pdf_url,arxiv_url,code_available,code_url"

// WriteTable renders records as delimited rows in listing order. Only
// the title is quoted: embedded quotes are doubled and embedded commas
// replaced with semicolons, so the URL columns stay plain. The
// code_available column is "yes" for a validated URL, "maybe" for a
// textual mention only, and "no" otherwise.
func WriteTable(w io.Writer, records []types.PaperRecord) error {
	if _, err := fmt.Fprintln(w, tableHeader); err != nil {
		return err
	}
	for _, r := range records {
		title := strings.ReplaceAll(r.Title, `"`, `""`)
		title = strings.ReplaceAll(title, ",", ";")

		avail := "no"
		switch {
		case r.CodeURL != "":
			avail = "yes"
		case r.CodeMentioned:
			avail = "maybe"
		}

		_, err := fmt.Fprintf(w, "\"%s\",%s,%s,%s,%s\n",
			title, r.PDFURL, r.ArxivURL, avail, r.CodeURL)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveTable writes the output table to path atomically, replacing any
// previous version whole.
func SaveTable(path string, records []types.PaperRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".table-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := WriteTable(tmp, records)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing table: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing table: %w", err)
	}
	return nil
}
