// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists harvest progress so interrupted runs
// resume where they left off instead of refetching finished work.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Store reads and writes the durable checkpoint file of one harvest run.
type Store struct {
	// Path is the checkpoint file location.
	Path string
}

// Load returns the stored checkpoint, or a zero checkpoint when the file
// does not exist yet. A file that exists but cannot be parsed is an
// error; the caller aborts rather than silently redoing finished work.
func (s *Store) Load() (types.Checkpoint, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.Checkpoint{}, nil
		}
		return types.Checkpoint{}, fmt.Errorf("reading checkpoint %s: %w", s.Path, err)
	}

	var cp types.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return types.Checkpoint{}, fmt.Errorf("parsing checkpoint %s: %w", s.Path, err)
	}
	return cp, nil
}

// Save writes the checkpoint atomically: the state is marshaled to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-save leaves the previous durable state intact.
func (s *Store) Save(cp types.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing checkpoint: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing checkpoint: %w", err)
	}
	return nil
}

// Revalidate re-runs the validity predicate over every stored code URL
// and clears the ones that no longer pass, returning how many were
// cleared. Titles, PDF and arXiv links, mention flags, and the cursor
// are untouched. This is how tightened validity rules reach records
// processed by earlier runs without refetching them.
func Revalidate(cp *types.Checkpoint, valid func(string) bool) int {
	cleared := 0
	for i := range cp.Processed {
		if cp.Processed[i].CodeURL != "" && !valid(cp.Processed[i].CodeURL) {
			cp.Processed[i].CodeURL = ""
			cleared++
		}
	}
	return cleared
}
