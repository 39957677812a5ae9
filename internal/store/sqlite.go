package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobsweep/internal/model"
)

// SQLiteStore persists curated candidates in a SQLite database and reports
// which of them it had not stored before.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// candidates table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS candidates (
		content_hash TEXT PRIMARY KEY,
		source       TEXT NOT NULL,
		source_id    TEXT,
		title        TEXT NOT NULL,
		company      TEXT,
		location     TEXT,
		posted_at    INTEGER,
		source_url   TEXT NOT NULL,
		description  TEXT,
		salary       TEXT,
		raw_json     TEXT,
		first_seen   INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating candidates table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_candidates_first_seen ON candidates (first_seen)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating first_seen index: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// ContentHash identifies a posting independently of which source returned it.
func ContentHash(j model.ScrapedJob) string {
	key := strings.ToLower(strings.TrimSpace(j.Company)) + "|" +
		strings.ToLower(strings.TrimSpace(j.Title)) + "|" +
		strings.ToLower(strings.TrimSpace(j.SourceURL))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SaveCandidates inserts jobs keyed by content hash inside one transaction and
// returns the jobs that were not already stored, in input order.
func (s *SQLiteStore) SaveCandidates(ctx context.Context, jobs []model.ScrapedJob) ([]model.ScrapedJob, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO candidates
		(content_hash, source, source_id, title, company, location, posted_at, source_url, description, salary, raw_json, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	firstSeen := s.now().Unix()
	var fresh []model.ScrapedJob
	for _, j := range jobs {
		var postedAt sql.NullInt64
		if j.PostedAt != nil {
			postedAt = sql.NullInt64{Int64: j.PostedAt.Unix(), Valid: true}
		}

		var raw sql.NullString
		if j.RawSourceData != nil {
			if b, err := json.Marshal(j.RawSourceData); err == nil {
				raw = sql.NullString{String: string(b), Valid: true}
			}
		}

		res, err := stmt.ExecContext(ctx,
			ContentHash(j), j.OriginalSource, j.ID, j.Title, j.Company, j.Location,
			postedAt, j.SourceURL, j.Description, j.Salary, raw, firstSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("saving candidate %q: %w", j.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("saving candidate %q: %w", j.Title, err)
		}
		if n > 0 {
			fresh = append(fresh, j)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing candidates: %w", err)
	}
	return fresh, nil
}

// Cleanup deletes candidates first seen longer ago than olderThan.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).Unix()
	_, err := s.db.Exec("DELETE FROM candidates WHERE first_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up candidates older than %v: %w", olderThan, err)
	}
	return nil
}

// Count returns how many candidates are stored.
func (s *SQLiteStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM candidates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting candidates: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
