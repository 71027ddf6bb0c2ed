// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache keeps recent evidence search results in SQLite so repeated
// keywords within a session do not hit the upstream APIs again.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const defaultTTL = time.Hour

// Store is a TTL-bounded evidence cache keyed by source and keyword.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache database. An empty cfg.Path keeps the
// database in memory for the lifetime of the process.
func Open(cfg types.CacheConfig) (*Store, error) {
	dsn := ":memory:"
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		dsn = cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if cfg.Path == "" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Store{db: db, ttl: ttl, now: time.Now}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS evidence (
			source TEXT NOT NULL,
			keyword TEXT NOT NULL,
			records TEXT NOT NULL,
			stored_at INTEGER NOT NULL,
			PRIMARY KEY (source, keyword)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_stored_at ON evidence(stored_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func normalize(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// Get returns the cached records for source and keyword. ok is false when
// there is no entry or it is older than the TTL.
func (s *Store) Get(ctx context.Context, source, keyword string) (records []types.Evidence, ok bool, err error) {
	var raw string
	var storedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT records, stored_at FROM evidence WHERE source = ? AND keyword = ?`,
		source, normalize(keyword),
	).Scan(&raw, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	if s.now().Sub(time.Unix(0, storedAt)) > s.ttl {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("decoding cached records: %w", err)
	}
	if records == nil {
		records = []types.Evidence{}
	}
	return records, true, nil
}

// Put stores records for source and keyword, replacing any previous entry.
func (s *Store) Put(ctx context.Context, source, keyword string, records []types.Evidence) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO evidence (source, keyword, records, stored_at) VALUES (?, ?, ?, ?)`,
		source, normalize(keyword), string(raw), s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM evidence WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// Source wraps an evidence source with the cache. Only successful
// searches are stored, so an unavailable source is retried next time.
type Source struct {
	Inner search.Source
	Store *Store
}

// Wrap returns sources with every element wrapped by store.
func Wrap(sources []search.Source, store *Store) []search.Source {
	out := make([]search.Source, len(sources))
	for i, src := range sources {
		out[i] = &Source{Inner: src, Store: store}
	}
	return out
}

// Name returns the wrapped source's name.
func (c *Source) Name() string { return c.Inner.Name() }

// Search serves keyword from the cache when fresh and falls through to the
// wrapped source otherwise. Cache failures never fail the search.
func (c *Source) Search(ctx context.Context, keyword string) ([]types.Evidence, error) {
	log := logging.FromContext(ctx)
	name := c.Inner.Name()

	records, ok, err := c.Store.Get(ctx, name, keyword)
	if err != nil {
		log.Warn("evidence cache read failed", "source", name, "error", err)
	}
	if ok {
		log.Debug("evidence cache hit", "source", name, "keyword", keyword, "count", len(records))
		return records, nil
	}

	records, err = c.Inner.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(ctx, name, keyword, records); err != nil {
		log.Warn("evidence cache write failed", "source", name, "error", err)
	}
	return records, nil
}
