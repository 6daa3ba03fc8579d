// Package db provides the persistence layer used by the relay. It wraps a
// SQLite database and exposes helpers for caching preview lookups and for
// recording every lookup outcome so the health endpoint can summarise how
// often enhancement succeeds. Callers are expected to open a single DB
// instance using New and reuse it for all operations.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"Preview-Player-Go/pkg/cache"
)

var log = logrus.WithField("component", "db")

// DB wraps a sql.DB connection and exposes helper methods for the
// application's persistence layer.
type DB struct {
	*sql.DB
	now func() time.Time
}

// DB doubles as a cache backend for the preview finder.
var _ cache.Cache = (*DB)(nil)

// New opens the SQLite database located at path. If the file does not
// exist it is created along with the required schema.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent across calls.
	d.SetMaxOpenConns(1)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS preview_cache (key TEXT PRIMARY KEY, value BLOB NOT NULL, expires_at INTEGER NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS lookups (id INTEGER PRIMARY KEY AUTOINCREMENT, query TEXT NOT NULL, found INTEGER NOT NULL, looked_up_at INTEGER NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_time ON lookups(looked_up_at)`,
	}
	// Execute the schema creation statements. Errors here likely mean the
	// database file is not writable.
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &DB{DB: d, now: time.Now}, nil
}

// Get implements cache.Cache. Expired rows are treated as misses and removed.
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value   []byte
		expires int64
	)
	err := db.QueryRowContext(ctx, `SELECT value, expires_at FROM preview_cache WHERE key=?`, key).Scan(&value, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, err
	}
	if expires != 0 && db.now().Unix() >= expires {
		// A failed delete leaves the row for the next read to remove.
		if _, err := db.ExecContext(ctx, `DELETE FROM preview_cache WHERE key=?`, key); err != nil {
			log.WithError(err).WithField("key", key).Debug("remove expired cache row")
		}
		return nil, cache.ErrMiss
	}
	return value, nil
}

// Set implements cache.Cache, replacing any existing entry for key. A
// non-positive ttl never expires.
func (db *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = db.now().Add(ttl).Unix()
	}
	_, err := db.ExecContext(ctx, `INSERT INTO preview_cache(key, value, expires_at) VALUES(?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at`, key, value, expires)
	return err
}

// RecordLookup logs the outcome of a preview lookup for query.
func (db *DB) RecordLookup(ctx context.Context, query string, found bool, at time.Time) error {
	_, err := db.ExecContext(ctx, `INSERT INTO lookups(query, found, looked_up_at) VALUES(?,?,?)`, query, found, at.Unix())
	return err
}

// LookupStats summarises lookups recorded since a point in time.
type LookupStats struct {
	Total int `json:"total"`
	Found int `json:"found"`
}

// LookupStatsSince counts lookups and successful lookups since the provided time.
func (db *DB) LookupStatsSince(ctx context.Context, since time.Time) (LookupStats, error) {
	var s LookupStats
	err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(found), 0) FROM lookups WHERE looked_up_at >= ?`, since.Unix()).Scan(&s.Total, &s.Found)
	return s, err
}

// QueryCount represents how many times a query missed.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// TopMissesSince returns the queries that most often produced no preview,
// most frequent first, limited to limit rows.
func (db *DB) TopMissesSince(ctx context.Context, since time.Time, limit int) ([]QueryCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT query, COUNT(*) c FROM lookups WHERE found=0 AND looked_up_at >= ? GROUP BY query ORDER BY c DESC, query ASC LIMIT ?`, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []QueryCount
	for rows.Next() {
		var q QueryCount
		if err := rows.Scan(&q.Query, &q.Count); err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	// rows.Err returns the first error encountered while iterating.
	return res, rows.Err()
}
