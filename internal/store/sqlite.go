// Package store persists cleaned shards to SQLite and exports the preview sample.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/ppiankov/newsclean/internal/model"
)

// Table is the destination table for cleaned records
const Table = "news_events_clean"

// insertChunk bounds rows per INSERT statement so bound parameters stay
// under SQLite's variable limit
const insertChunk = 500

//go:embed migrations/*.sql
var migrationsFS embed.FS

var gooseInitMu sync.Mutex

// Store appends canonical batches to the SQLite table
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer
	db.SetMaxOpenConns(1)

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// ApplyMigrations executes all embedded migrations against db
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	gooseInitMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseInitMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Append inserts every row of b in one transaction and returns the row count.
// b must carry the canonical columns.
func (s *Store) Append(ctx context.Context, b *model.Batch) (int, error) {
	if b.Len() == 0 {
		return 0, nil
	}
	columns := make([]string, len(model.CanonicalSchema))
	types := make([]model.FieldType, len(model.CanonicalSchema))
	for i, f := range model.CanonicalSchema {
		if !b.Has(f.Name) {
			return 0, fmt.Errorf("append: batch missing column %s", f.Name)
		}
		columns[i], types[i] = f.Name, f.Type
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < b.Len(); start += insertChunk {
		end := min(start+insertChunk, b.Len())

		builder := squirrel.Insert(Table).Columns(columns...)
		for i := start; i < end; i++ {
			row := make([]any, len(columns))
			for j, name := range columns {
				row[j] = sqlValue(types[j], b.Value(i, name))
			}
			builder = builder.Values(row...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return b.Len(), nil
}

// sqlValue maps a cell to its driver value for a column of type t.
// Only REAL columns receive floats; anything else, numbers included, is stored
// as the text the CSV sample shows. Timestamps are RFC 3339 text.
func sqlValue(t model.FieldType, v model.Value) any {
	switch {
	case v.IsNull():
		return nil
	case t == model.FieldReal && v.Kind == model.KindNumber:
		return v.Num
	default:
		return v.Text()
	}
}

// Count returns the number of rows in the table
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args, err := squirrel.Select("COUNT(*)").From(Table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
