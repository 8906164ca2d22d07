package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB is a key/value store over a SQL database.
// SQLite is the default; Postgres and MySQL share the same table layout.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

type dialect struct {
	driver string
	upsert string
	get    string
	delete string
	schema []string
}

var dialects = map[string]dialect{
	"sqlite": {
		driver: "sqlite",
		upsert: `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		get:    `SELECT value FROM kv WHERE key = ?`,
		delete: `DELETE FROM kv WHERE key = ?`,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value BLOB NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	"postgres": {
		driver: "postgres",
		upsert: `INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		get:    `SELECT value FROM kv WHERE key = $1`,
		delete: `DELETE FROM kv WHERE key = $1`,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value BYTEA NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	"mysql": {
		driver: "mysql",
		upsert: `INSERT INTO kv (` + "`key`" + `, value, updated_at) VALUES (?, ?, NOW())
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
		get:    "SELECT value FROM kv WHERE `key` = ?",
		delete: "DELETE FROM kv WHERE `key` = ?",
		schema: []string{
			"CREATE TABLE IF NOT EXISTS kv (" +
				"`key` VARCHAR(191) PRIMARY KEY, " +
				"value LONGBLOB NOT NULL, " +
				"updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP" +
				") CHARACTER SET utf8mb4",
		},
	},
}

// NewSQLite opens (or creates) the SQLite file at dbPath.
func NewSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)
	return newDB(conn, dialects["sqlite"])
}

// NewSQL opens a Postgres or MySQL database with the given DSN.
func NewSQL(driver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok || driver == "sqlite" {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
	if driver == "mysql" && !strings.Contains(dsn, "parseTime") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "parseTime=true&charset=utf8mb4"
	}
	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return newDB(conn, d)
}

func newDB(conn *sql.DB, d dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) migrate() error {
	for _, m := range db.dialect.schema {
		if _, err := db.conn.Exec(m); err != nil {
			// re-running an additive migration is fine
			if strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists") {
				continue
			}
			return err
		}
	}
	return nil
}

func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := db.conn.QueryRowContext(ctx, db.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	if _, err := db.conn.ExecContext(ctx, db.dialect.upsert, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, db.dialect.delete, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
