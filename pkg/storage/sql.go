package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// dialect holds the statements that differ between SQL databases.
type dialect struct {
	driver Driver
	ddl    string
	get    string
	set    string
	del    string
}

var sqliteDialect = dialect{
	driver: DriverSQLite,
	ddl: `CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
	get: `SELECT payload FROM snapshots WHERE key = ?`,
	set: `INSERT INTO snapshots(key,payload) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET payload=excluded.payload`,
	del: `DELETE FROM snapshots WHERE key = ?`,
}

var postgresDialect = dialect{
	driver: DriverPostgres,
	ddl: `CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`,
	get: `SELECT payload FROM snapshots WHERE key = $1`,
	set: `INSERT INTO snapshots(key,payload) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET payload=EXCLUDED.payload`,
	del: `DELETE FROM snapshots WHERE key = $1`,
}

// SQLStore keeps snapshots in a two-column table, one row per key.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path.
// An empty path selects biotree.db under DefaultDir().
func NewSQLiteStore(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultSQLitePath(); err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writers
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect)
}

// DefaultSQLitePath returns biotree.db under DefaultDir().
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "biotree.db"), nil
}

// NewPostgresStore connects to PostgreSQL using a pgx DSN.
// BIOTREE_POSTGRES_DSN overrides dsn.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if env := os.Getenv("BIOTREE_POSTGRES_DSN"); env != "" {
		dsn = env
	}
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, d.ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// Get selects the payload for key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, true, nil
}

// Set upserts the payload for key.
func (s *SQLStore) Set(ctx context.Context, key string, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.set, key, data); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the row for key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.del, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Driver() Driver { return s.dialect.driver }

// Close closes the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// Ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)
