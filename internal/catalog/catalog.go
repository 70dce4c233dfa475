package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/pkg/failure"

	_ "modernc.org/sqlite" // SQLite driver
)

/*
Catalog is a local SQLite index over the sidecars written by a crawl.

Responsibilities
- Keep one row per (site, code), replaced on every recrawl
- Answer lookups without re-reading the output directory

The sidecar on disk stays the source of truth; the catalog can be deleted
and rebuilt by recrawling from the cache.
*/

// DefaultFilename is the database file created inside the catalog directory.
const DefaultFilename = "catalog.db"

type Catalog struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the catalog at dir/catalog.db in WAL mode.
func Open(dir string) (*Catalog, failure.ClassifiedError) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseOpenFailure}
	}
	dbPath := filepath.Join(dir, DefaultFilename)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseOpenFailure}
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, &CatalogError{Message: fmt.Sprintf("enable WAL: %v", err), Cause: ErrCauseOpenFailure}
	}

	c := &Catalog{db: db, dbPath: dbPath}
	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseSchemaFailure}
	}
	return c, nil
}

func (c *Catalog) Path() string {
	return c.dbPath
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		site TEXT NOT NULL,
		code TEXT NOT NULL,
		title TEXT,
		page_url TEXT NOT NULL,
		crawl_date TEXT,
		loaded_from_cache INTEGER NOT NULL DEFAULT 0,
		download_count INTEGER NOT NULL DEFAULT 0,
		saved_count INTEGER NOT NULL DEFAULT 0,
		body TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (site, code)
	);

	CREATE INDEX IF NOT EXISTS idx_records_page_url ON records(page_url);
	`
	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Upsert stores rec, replacing any earlier row for the same site and code.
func (c *Catalog) Upsert(ctx context.Context, rec record.Record) failure.ClassifiedError {
	body, err := json.Marshal(rec)
	if err != nil {
		return &CatalogError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}

	query := `
	INSERT INTO records (site, code, title, page_url, crawl_date, loaded_from_cache,
		download_count, saved_count, body, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(site, code) DO UPDATE SET
		title = excluded.title,
		page_url = excluded.page_url,
		crawl_date = excluded.crawl_date,
		loaded_from_cache = excluded.loaded_from_cache,
		download_count = excluded.download_count,
		saved_count = excluded.saved_count,
		body = excluded.body,
		updated_at = CURRENT_TIMESTAMP
	`
	_, err = c.db.ExecContext(ctx, query,
		rec.Site,
		rec.Code,
		rec.Title,
		rec.PageURL,
		rec.CrawlDate,
		rec.LoadedFromCache,
		len(rec.DownloadLinks),
		len(rec.SavedFilenames),
		string(body),
	)
	if err != nil {
		return &CatalogError{
			Message:   fmt.Sprintf("upsert %s/%s: %v", rec.Site, rec.Code, err),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
		}
	}
	return nil
}

// Get returns the stored record for site and code.
func (c *Catalog) Get(ctx context.Context, site, code string) (record.Record, failure.ClassifiedError) {
	var body string
	err := c.db.QueryRowContext(ctx,
		"SELECT body FROM records WHERE site = ? AND code = ?", site, code,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, &CatalogError{
			Message: fmt.Sprintf("%s/%s", site, code),
			Cause:   ErrCauseNotFound,
		}
	}
	if err != nil {
		return record.Record{}, &CatalogError{Message: err.Error(), Cause: ErrCauseReadFailure}
	}

	var rec record.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return record.Record{}, &CatalogError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}
	return rec, nil
}

// Summary is one catalog row without the full record body.
type Summary struct {
	Site          string
	Code          string
	Title         string
	PageURL       string
	DownloadCount int
	SavedCount    int
}

// Complete reports whether every download link was saved.
func (s Summary) Complete() bool {
	return s.SavedCount == s.DownloadCount
}

// List returns the rows for site ordered by code. An empty site lists all.
func (c *Catalog) List(ctx context.Context, site string) ([]Summary, failure.ClassifiedError) {
	query := `SELECT site, code, title, page_url, download_count, saved_count FROM records`
	args := []any{}
	if site != "" {
		query += ` WHERE site = ?`
		args = append(args, site)
	}
	query += ` ORDER BY site, code`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseReadFailure}
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var title sql.NullString
		if err := rows.Scan(&s.Site, &s.Code, &title, &s.PageURL, &s.DownloadCount, &s.SavedCount); err != nil {
			return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseReadFailure}
		}
		s.Title = title.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &CatalogError{Message: err.Error(), Cause: ErrCauseReadFailure}
	}
	return out, nil
}
