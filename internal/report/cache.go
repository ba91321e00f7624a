// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheFile = "github_cache.db"

// Cache persists repository statistics between report runs so repeated
// runs over the same CSV do not burn API quota.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the statistics cache at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	c := &Cache{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS repo_stats (
		repo TEXT PRIMARY KEY,
		about TEXT,
		language TEXT,
		stars INTEGER,
		forks INTEGER,
		watches INTEGER,
		fetched_at TEXT
	)`)
	return err
}

// Get returns the cached statistics for an "owner/repo" key, or nil
// when the repository has not been fetched yet.
func (c *Cache) Get(ctx context.Context, repo string) (*RepoStats, error) {
	var st RepoStats
	var fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT about, language, stars, forks, watches, fetched_at
		 FROM repo_stats WHERE repo = ?`, repo,
	).Scan(&st.About, &st.Language, &st.Stars, &st.Forks, &st.Watches, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", repo, err)
	}

	if t, parseErr := time.Parse(time.RFC3339, fetchedAt); parseErr == nil {
		st.FetchedAt = t
	}
	return &st, nil
}

// Put stores or replaces the statistics for an "owner/repo" key.
func (c *Cache) Put(ctx context.Context, repo string, st *RepoStats) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO repo_stats (repo, about, language, stars, forks, watches, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(repo) DO UPDATE SET
			about=excluded.about, language=excluded.language, stars=excluded.stars,
			forks=excluded.forks, watches=excluded.watches, fetched_at=excluded.fetched_at`,
		repo, st.About, st.Language, st.Stars, st.Forks, st.Watches,
		st.FetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", repo, err)
	}
	return nil
}
