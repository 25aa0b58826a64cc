package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"spoilershield/internal/model"
	"spoilershield/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListTerms returns every watchlist term, alphabetically.
func (s *SQLite) ListTerms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term FROM watchlist_terms ORDER BY term_norm`,
	)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// AddTerm inserts a watchlist term. It returns false when a
// case-insensitive duplicate already exists.
func (s *SQLite) AddTerm(ctx context.Context, term string) (bool, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return false, fmt.Errorf("empty term")
	}
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist_terms (term, term_norm, created_at) VALUES (?, ?, ?)`,
		term, strings.ToLower(term), now,
	)
	if err != nil {
		return false, fmt.Errorf("insert term: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveTerm deletes a term, matching case-insensitively.
func (s *SQLite) RemoveTerm(ctx context.Context, term string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist_terms WHERE term_norm = ?`,
		strings.ToLower(strings.TrimSpace(term)),
	)
	if err != nil {
		return false, fmt.Errorf("delete term: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ClearTerms removes the whole watchlist.
func (s *SQLite) ClearTerms(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM watchlist_terms`); err != nil {
		return fmt.Errorf("clear terms: %w", err)
	}
	return nil
}

// ListPlatforms returns the persisted lifecycle flags of every source.
func (s *SQLite) ListPlatforms(ctx context.Context) ([]model.PlatformConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, enabled, configured FROM platforms ORDER BY source_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query platforms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []model.PlatformConfig
	for rows.Next() {
		var cfg model.PlatformConfig
		var enabled, configured int
		if err := rows.Scan(&cfg.ID, &enabled, &configured); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		cfg.Enabled = enabled == 1
		cfg.Configured = configured == 1
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// SavePlatform upserts the lifecycle flags of one source, leaving any stored
// credentials untouched.
func (s *SQLite) SavePlatform(ctx context.Context, cfg model.PlatformConfig) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO platforms (source_id, enabled, configured, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET
		   enabled = excluded.enabled,
		   configured = excluded.configured,
		   updated_at = excluded.updated_at`,
		cfg.ID, boolToInt(cfg.Enabled), boolToInt(cfg.Configured), now,
	)
	if err != nil {
		return fmt.Errorf("save platform: %w", err)
	}
	return nil
}

// SetCredentials upserts the serialized credentials of one source, leaving
// the lifecycle flags untouched.
func (s *SQLite) SetCredentials(ctx context.Context, sourceID string, creds model.Credentials) error {
	payload, err := model.EncodeCredentials(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO platforms (source_id, enabled, configured, credentials, updated_at)
		 VALUES (?, 0, 0, ?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET
		   credentials = excluded.credentials,
		   updated_at = excluded.updated_at`,
		sourceID, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("set credentials: %w", err)
	}
	return nil
}

// Credentials loads and decodes the stored credentials of one source.
func (s *SQLite) Credentials(ctx context.Context, sourceID string) (model.Credentials, bool, error) {
	var payload sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT credentials FROM platforms WHERE source_id = ?`, sourceID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query credentials: %w", err)
	}
	if !payload.Valid || payload.String == "" {
		return nil, false, nil
	}
	creds, err := model.DecodeCredentials([]byte(payload.String))
	if err != nil {
		return nil, false, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, true, nil
}

// RecordScan bumps the lifetime counters for one analyzed item.
func (s *SQLite) RecordScan(ctx context.Context, hasSpoiler bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scan_stats SET scanned = scanned + 1, flagged = flagged + ? WHERE id = 1`,
		boolToInt(hasSpoiler),
	)
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// Totals returns the lifetime counters.
func (s *SQLite) Totals(ctx context.Context) (model.ScanTotals, error) {
	var totals model.ScanTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT scanned, flagged FROM scan_stats WHERE id = 1`,
	).Scan(&totals.Scanned, &totals.Flagged)
	if err != nil {
		return model.ScanTotals{}, fmt.Errorf("query totals: %w", err)
	}
	return totals, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
