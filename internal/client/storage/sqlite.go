package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/dmitrijs2005/eportfolio/internal/client/storage/migrations"
	"github.com/dmitrijs2005/eportfolio/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLite is a KV backed by the kv table of a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an already migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Open opens (creating if needed) the database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLite(db), nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log.New(io.Discard, "", 0))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return load(ctx, s.db, key)
}

func (s *SQLite) Save(ctx context.Context, key string, value []byte) error {
	return save(ctx, s.db, key, value)
}

func (s *SQLite) Update(ctx context.Context, key string, fn func([]byte, bool) ([]byte, error)) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		cur, ok, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(cur, ok)
		if err != nil {
			return err
		}
		return save(ctx, tx, key, next)
	})
}

func load(ctx context.Context, db dbx.DBTX, key string) ([]byte, bool, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func save(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save kv[%s]: %w", key, err)
	}
	return nil
}
