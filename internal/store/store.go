// Package store handles SQLite persistence of analysis history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/shiftscope/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Fixed-width so lexical order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no saved run matches an id.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for saved runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			created_at TEXT NOT NULL,
			tables TEXT NOT NULL,
			letters INTEGER NOT NULL,
			ic REAL NOT NULL,
			best_key INTEGER NOT NULL,
			best_chi REAL NOT NULL,
			bigram_best_key INTEGER NOT NULL,
			bigram_best_chi REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_scores (
			run_id TEXT NOT NULL,
			key INTEGER NOT NULL,
			chi REAL NOT NULL,
			chi_bigram REAL NOT NULL,
			PRIMARY KEY (run_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run and its per-key scores in one transaction. A new id
// is generated when rec.ID is empty; the stored id is returned.
func (s *Store) InsertRun(ctx context.Context, rec model.RunRecord, scores []model.RunScore) (id string, err error) {
	id = rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, created_at, tables, letters, ic, best_key, best_chi, bigram_best_key, bigram_best_chi)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.Label,
		rec.CreatedAt.UTC().Format(timeLayout),
		rec.Tables,
		rec.Letters,
		rec.IC,
		rec.BestKey,
		rec.BestChi,
		rec.BigramBestKey,
		rec.BigramBestChi,
	)
	if err != nil {
		return "", err
	}

	if len(scores) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO run_scores (run_id, key, chi, chi_bigram) VALUES (?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, sc := range scores {
			if _, err = stmt.ExecContext(ctx, id, sc.Key, sc.Chi, sc.ChiBigram); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns saved runs oldest first, filtered by f.
func (s *Store) ListRuns(ctx context.Context, f model.HistoryFilter) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Label != "" {
		clauses = append(clauses, "label = ?")
		args = append(args, f.Label)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, label, created_at, tables, letters, ic, best_key, best_chi, bigram_best_key, bigram_best_chi
		FROM runs
		WHERE %s
		ORDER BY created_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if f.Last > 0 && len(runs) > f.Last {
		runs = runs[len(runs)-f.Last:]
	}
	return runs, nil
}

// GetRun finds a run by full id or unique id prefix.
func (s *Store) GetRun(ctx context.Context, idPrefix string) (model.RunRecord, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return model.RunRecord{}, fmt.Errorf("run id is empty")
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idPrefix) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, created_at, tables, letters, ic, best_key, best_chi, bigram_best_key, bigram_best_chi
		 FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, pattern)
	if err != nil {
		return model.RunRecord{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var found []model.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return model.RunRecord{}, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return model.RunRecord{}, err
	}
	switch len(found) {
	case 0:
		return model.RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, idPrefix)
	case 1:
		return found[0], nil
	default:
		return model.RunRecord{}, fmt.Errorf("run id %q is ambiguous", idPrefix)
	}
}

// ListRunScores returns the per-key scores of a run ordered by key.
func (s *Store) ListRunScores(ctx context.Context, runID string) ([]model.RunScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, chi, chi_bigram FROM run_scores WHERE run_id = ? ORDER BY key ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var scores []model.RunScore
	for rows.Next() {
		var sc model.RunScore
		if err := rows.Scan(&sc.Key, &sc.Chi, &sc.ChiBigram); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunRecord, error) {
	var rec model.RunRecord
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Label, &createdAt, &rec.Tables, &rec.Letters, &rec.IC,
		&rec.BestKey, &rec.BestChi, &rec.BigramBestKey, &rec.BigramBestChi); err != nil {
		return model.RunRecord{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.RunRecord{}, err
	}
	rec.CreatedAt = parsed
	return rec, nil
}
