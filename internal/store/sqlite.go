// Package store persists fiscal-year-end lookups between runs so repeated
// builds over the same companies skip the SEC structured APIs.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/busfactor-cli/internal/edgar"
)

// SQLiteCache implements edgar.FYECache using modernc.org/sqlite.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteCache{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fye_facts (
	cik10      TEXT NOT NULL,
	fyear      INTEGER NOT NULL,
	fye_month  INTEGER NOT NULL,
	fye_date   TEXT,
	form       TEXT,
	accn       TEXT,
	source     TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (cik10, fyear)
);
`

// Migrate creates the cache schema when missing.
func (s *SQLiteCache) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

const fyeDateLayout = "2006-01-02"

// Get returns the cached fact for one company fiscal year.
func (s *SQLiteCache) Get(key edgar.CIKYear) (edgar.FYE, bool, error) {
	var (
		fye     edgar.FYE
		dateStr sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT fye_month, fye_date, form, accn FROM fye_facts WHERE cik10 = ? AND fyear = ?`,
		key.CIK10, key.FYear,
	).Scan(&fye.Month, &dateStr, &fye.Form, &fye.Accn)
	if err == sql.ErrNoRows {
		return edgar.FYE{}, false, nil
	}
	if err != nil {
		return edgar.FYE{}, false, eris.Wrap(err, "sqlite: get fye")
	}
	if dateStr.Valid && dateStr.String != "" {
		if ts, perr := time.Parse(fyeDateLayout, dateStr.String); perr == nil {
			fye.Date = ts
		}
	}
	fye.Source = "cache"
	return fye, true, nil
}

// Put upserts the fact for one company fiscal year.
func (s *SQLiteCache) Put(key edgar.CIKYear, fye edgar.FYE) error {
	dateStr := ""
	if !fye.Date.IsZero() {
		dateStr = fye.Date.Format(fyeDateLayout)
	}
	_, err := s.db.Exec(
		`INSERT INTO fye_facts (cik10, fyear, fye_month, fye_date, form, accn, source, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (cik10, fyear) DO UPDATE SET
			fye_month = excluded.fye_month,
			fye_date = excluded.fye_date,
			form = excluded.form,
			accn = excluded.accn,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		key.CIK10, key.FYear, fye.Month, dateStr, fye.Form, fye.Accn, fye.Source,
	)
	return eris.Wrap(err, "sqlite: put fye")
}
