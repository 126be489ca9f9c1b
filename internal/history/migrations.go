package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrSchemaTooNew reports a history database written by a newer voicetag.
var ErrSchemaTooNew = errors.New("history schema is newer than this build supports")

// migration is one numbered schema step. Files are named NNN_name.sql and
// numbered from 1 without gaps; the highest applied number is kept in
// PRAGMA user_version.
type migration struct {
	version int
	name    string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	out := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive number", name)
		}
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{version: version, name: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	for i, m := range out {
		if m.version != i+1 {
			return nil, fmt.Errorf("migration %s: expected version %d", m.name, i+1)
		}
	}
	return out, nil
}

// LatestSchemaVersion is the version Open migrates a database to.
func LatestSchemaVersion() int {
	migrations, err := loadMigrations()
	if err != nil {
		return 0
	}
	return len(migrations)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readSchemaVersion(ctx context.Context, q querier) (int, error) {
	var version int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := readSchemaVersion(ctx, tx)
	if err != nil {
		return err
	}
	latest := len(migrations)
	if current > latest {
		return fmt.Errorf("%w: %s is at v%d, this build supports v%d", ErrSchemaTooNew, s.path, current, latest)
	}
	if current == latest {
		return nil
	}

	for _, m := range migrations[current:] {
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", latest)); err != nil {
		return fmt.Errorf("record schema version %d: %w", latest, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return readSchemaVersion(ctx, s.db)
}

// Inspection summarizes an existing history database.
type Inspection struct {
	Version     int
	Latest      int
	Predictions int
}

// Inspect reads the schema version and row count of the database at path
// without migrating it. A missing file is an error; Open creates databases,
// Inspect never does.
func Inspect(ctx context.Context, path string) (Inspection, error) {
	if _, err := os.Stat(path); err != nil {
		return Inspection{}, fmt.Errorf("inspect history: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Inspection{}, fmt.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()

	info := Inspection{Latest: LatestSchemaVersion()}
	if info.Version, err = readSchemaVersion(ctx, db); err != nil {
		return Inspection{}, err
	}
	if info.Version >= 1 {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM predictions").Scan(&info.Predictions); err != nil {
			return Inspection{}, fmt.Errorf("count predictions: %w", err)
		}
	}
	return info, nil
}
