// CLAUDE:SUMMARY SQLite table of fetchable sources: seeded from adapters, overridable URLs, last availability check and last fetch.
package importer

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Source is a row of the import_sources table.
type Source struct {
	AdapterID   string
	FileName    string
	Description string
	SourceURL   string
	License     string
	UpdatedAt   int64

	// Availability, written by Checker.
	LastCheck  *int64
	LastStatus *int
	LastError  *string

	// Last successful fetch, written by FetchOne.
	LastFetch *int64
	Rows      *int
	SHA256    *string
}

// SourceDB stores source URLs and their status in SQLite.
type SourceDB struct {
	db *sql.DB
}

const sourcesDDL = `CREATE TABLE IF NOT EXISTS import_sources (
	adapter_id   TEXT PRIMARY KEY,
	file_name    TEXT NOT NULL,
	description  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	license      TEXT NOT NULL DEFAULT '',
	updated_at   INTEGER NOT NULL,
	last_check   INTEGER,
	last_status  INTEGER,
	last_error   TEXT,
	last_fetch   INTEGER,
	fetched_rows INTEGER,
	sha256       TEXT
)`

// OpenSourceDB opens (or creates) the database at path.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	if _, err := db.Exec(sourcesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}
	return &SourceDB{db: db}, nil
}

// Close closes the underlying database.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts a row per adapter. Existing rows are left untouched so that
// URL overrides survive restarts.
func (s *SourceDB) Seed(adapters []Adapter) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("seed sources: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, a := range adapters {
		_, err := tx.Exec(`INSERT OR IGNORE INTO import_sources
			(adapter_id, file_name, description, source_url, license, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID(), a.FileName(), a.Description(), a.DefaultURL(), a.License(), now)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return tx.Commit()
}

// GetURL returns the current source URL of an adapter.
func (s *SourceDB) GetURL(adapterID string) (string, error) {
	var url string
	err := s.db.QueryRow(`SELECT source_url FROM import_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL of an adapter.
func (s *SourceDB) SetURL(adapterID, url string) error {
	return s.update(adapterID, "set url",
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID)
}

// ResetURL restores the adapter's default URL.
func (s *SourceDB) ResetURL(a Adapter) error {
	return s.SetURL(a.ID(), a.DefaultURL())
}

// UpdateCheck persists the result of an availability check. An empty checkErr
// clears the previous error.
func (s *SourceDB) UpdateCheck(adapterID string, status int, checkErr string) error {
	var errVal *string
	if checkErr != "" {
		errVal = &checkErr
	}
	return s.update(adapterID, "update check",
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, errVal, adapterID)
}

// RecordFetch stores the outcome of a successful fetch.
func (s *SourceDB) RecordFetch(m *FetchManifest) error {
	return s.update(m.Source, "record fetch",
		`UPDATE import_sources SET last_fetch = ?, fetched_rows = ?, sha256 = ? WHERE adapter_id = ?`,
		m.FetchedAt.Unix(), m.Rows, m.SHA256, m.Source)
}

func (s *SourceDB) update(adapterID, op, query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s for %s: %w", op, adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: source %s not found", op, adapterID)
	}
	return nil
}

// ListSources returns all sources ordered by adapter ID.
func (s *SourceDB) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT adapter_id, file_name, description, source_url, license, updated_at,
		last_check, last_status, last_error, last_fetch, fetched_rows, sha256
		FROM import_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.FileName, &src.Description, &src.SourceURL,
			&src.License, &src.UpdatedAt, &src.LastCheck, &src.LastStatus, &src.LastError,
			&src.LastFetch, &src.Rows, &src.SHA256); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}
