// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest drives the per-venue extraction pipeline: listing,
// sequential per-paper detail extraction, checkpointing, and the output
// table.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/internal/checkpoint"
	"github.com/pdiddy/paper-scout/internal/repolink"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// ErrListing marks a failure to obtain the complete paper listing. It is
// fatal to the run: the resume cursor only means something against a
// stable, complete ordering, so no partial listing is acceptable.
var ErrListing = errors.New("listing failed")

// Source supplies papers from one venue platform.
//
// Listing returns the full ordered list of paper stubs and must be
// deterministic for the same upstream state. Detail turns one stub into
// a terminal record; an error from Detail fails only that record.
type Source interface {
	Name() string
	Listing(ctx context.Context) ([]types.PaperStub, error)
	Detail(ctx context.Context, stub types.PaperStub) (types.PaperRecord, error)
}

// Summary holds the counts reported at the end of a run.
type Summary struct {
	Papers    int // records in the final table
	WithCode  int // records with a validated code URL
	Mentioned int // records with only a textual code mention
	Failed    int // records whose page fetch failed
}

// HasFailures reports whether any paper pages could not be fetched.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run executes the pipeline for src: obtain the listing, resume from the
// stored checkpoint, process every remaining stub in order, and flush the
// checkpoint and table at the configured cadence and at completion.
// A per-paper failure degrades that record to fetch_failed and the run
// continues; a listing failure, an unreadable checkpoint, or a failed
// flush aborts.
//
// Output files are named after the lowercased venue key inside
// cfg.OutputDir: <venue>_papers.csv and <venue>_progress.json.
func Run(ctx context.Context, src Source, cfg types.HarvestConfig, w io.Writer) (Summary, error) {
	key := strings.ToLower(src.Name())
	store := &checkpoint.Store{Path: filepath.Join(cfg.OutputDir, key+"_progress.json")}
	tablePath := filepath.Join(cfg.OutputDir, key+"_papers.csv")

	checkpointEvery := cfg.CheckpointEvery
	if checkpointEvery <= 0 {
		checkpointEvery = 10
	}

	fmt.Fprintf(w, "%s paper harvest\n", src.Name())
	fmt.Fprintln(w, strings.Repeat("=", 50))

	stubs, err := src.Listing(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrListing, err)
	}
	fmt.Fprintf(w, "Found %d papers\n", len(stubs))

	cp, err := store.Load()
	if err != nil {
		return Summary{}, err
	}
	if cleared := checkpoint.Revalidate(&cp, repolink.IsValidRepo); cleared > 0 {
		fmt.Fprintf(w, "Cleared %d stale code URLs from checkpoint\n", cleared)
	}
	if cp.LastIndex > 0 {
		fmt.Fprintf(w, "Resuming from paper %d\n", cp.LastIndex+1)
	}

	start := cp.LastIndex
	for i := start; i < len(stubs); i++ {
		if i > start && cfg.RecordDelay > 0 {
			select {
			case <-ctx.Done():
				return summarize(cp.Processed), ctx.Err()
			case <-time.After(cfg.RecordDelay):
			}
		}
		select {
		case <-ctx.Done():
			return summarize(cp.Processed), ctx.Err()
		default:
		}

		stub := stubs[i]
		fmt.Fprintf(w, "[%d/%d] %s...\n", i+1, len(stubs), preview(stub.Title, 55))

		rec, err := src.Detail(ctx, stub)
		if err != nil {
			if ctx.Err() != nil {
				return summarize(cp.Processed), ctx.Err()
			}
			fmt.Fprintf(w, "  warning: %v\n", err)
			rec = types.PaperRecord{Title: stub.Title, Status: types.StatusFetchFailed}
		}

		cp.Processed = append(cp.Processed, rec)
		cp.LastIndex = i + 1

		if rec.CodeURL != "" {
			fmt.Fprintf(w, "  => code: %s\n", rec.CodeURL)
		} else if rec.CodeMentioned {
			fmt.Fprintln(w, "  => code mentioned, no URL found")
		}

		if cp.LastIndex%checkpointEvery == 0 {
			if err := flush(store, tablePath, cp); err != nil {
				return summarize(cp.Processed), err
			}
			fmt.Fprintf(w, "  [saved progress: %d papers]\n", cp.LastIndex)
		}
	}

	if err := flush(store, tablePath, cp); err != nil {
		return summarize(cp.Processed), err
	}

	sum := summarize(cp.Processed)
	fmt.Fprintf(w, "\nDone. %d papers saved to %s\n", sum.Papers, tablePath)
	fmt.Fprintf(w, "With code URL: %d\n", sum.WithCode)
	fmt.Fprintf(w, "Code mentioned (no URL): %d\n", sum.Mentioned)
	if sum.Failed > 0 {
		fmt.Fprintf(w, "Fetch failures: %d\n", sum.Failed)
	}
	return sum, nil
}

// flush makes the current progress durable. The checkpoint is written
// before the table so a crash between the two writes loses only the
// human-readable view, never resume state.
func flush(store *checkpoint.Store, tablePath string, cp types.Checkpoint) error {
	if err := store.Save(cp); err != nil {
		return err
	}
	return SaveTable(tablePath, cp.Processed)
}

func summarize(records []types.PaperRecord) Summary {
	s := Summary{Papers: len(records)}
	for _, r := range records {
		switch {
		case r.CodeURL != "":
			s.WithCode++
		case r.CodeMentioned:
			s.Mentioned++
		}
		if r.Status == types.StatusFetchFailed {
			s.Failed++
		}
	}
	return s
}

func preview(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
