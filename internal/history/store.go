package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when callers pass a non-positive limit.
const DefaultListLimit = 50

// createdAtLayout is fixed width and always UTC, so created_at sorts
// chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Record is one completed prediction.
type Record struct {
	ID          string
	CreatedAt   time.Time
	Source      string
	Filename    string
	Word        string
	Speaker     string
	WordCode    string
	SpeakerCode string
	Prediction  []float64
	Duration    time.Duration
	Fingerprint string
}

// Store manages prediction history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("history path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts rec. A blank ID is replaced with a new UUID and a zero
// CreatedAt with the current time.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	predJSON, err := json.Marshal(rec.Prediction)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO predictions (
            id, created_at, source, filename, word, speaker,
            word_code, speaker_code, prediction_json, duration_ms, model_fingerprint
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UTC().Format(createdAtLayout),
		rec.Source,
		nullableString(rec.Filename),
		rec.Word,
		rec.Speaker,
		rec.WordCode,
		rec.SpeakerCode,
		string(predJSON),
		rec.Duration.Milliseconds(),
		nullableString(rec.Fingerprint),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, source, filename, word, speaker, word_code, speaker_code,
                prediction_json, duration_ms, model_fingerprint
         FROM predictions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

// Count returns the number of stored predictions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM predictions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		rec         Record
		createdRaw  string
		filename    sql.NullString
		predJSON    string
		durationMS  int64
		fingerprint sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&createdRaw,
		&rec.Source,
		&filename,
		&rec.Word,
		&rec.Speaker,
		&rec.WordCode,
		&rec.SpeakerCode,
		&predJSON,
		&durationMS,
		&fingerprint,
	); err != nil {
		return Record{}, fmt.Errorf("scan prediction: %w", err)
	}
	created, err := time.Parse(createdAtLayout, createdRaw)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	if err := json.Unmarshal([]byte(predJSON), &rec.Prediction); err != nil {
		return Record{}, fmt.Errorf("decode prediction %s: %w", rec.ID, err)
	}
	rec.CreatedAt = created
	rec.Filename = filename.String
	rec.Fingerprint = fingerprint.String
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
