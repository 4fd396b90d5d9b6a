// Package cache provides a SQLite-backed compile cache keyed by source
// content. Compilation is deterministic, so a hit can be trusted without
// revalidation.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("hydor.cache")

// Cache stores compiled bytecode and debug sidecars keyed by a content
// hash of the source. Safe for use from one process; SQLite's busy
// timeout covers concurrent build invocations.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a compile cache at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS compiled (
		key TEXT PRIMARY KEY,
		format_version INTEGER NOT NULL,
		bytecode BLOB NOT NULL,
		debug BLOB,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Key derives the cache key for a source text: the hex SHA-256 of its
// bytes. Identical sources always map to the same entry.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get looks up compiled output by key. A miss returns (nil, nil, false, nil).
// Entries written by a different format version are treated as misses.
func (c *Cache) Get(key string, formatVersion uint16) (bytecode, debug []byte, ok bool, err error) {
	row := c.db.QueryRow(
		"SELECT bytecode, debug FROM compiled WHERE key = ? AND format_version = ?",
		key, formatVersion,
	)
	if err := row.Scan(&bytecode, &debug); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	log.Debugf("cache hit for %s", key[:12])
	return bytecode, debug, true, nil
}

// Put stores compiled output under the given key, replacing any existing
// entry. debug may be nil when no sidecar was produced.
func (c *Cache) Put(key string, formatVersion uint16, bytecode, debug []byte) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO compiled (key, format_version, bytecode, debug, created_at) VALUES (?, ?, ?, ?, ?)",
		key, formatVersion, bytecode, debug, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	log.Debugf("cached %d bytecode bytes for %s", len(bytecode), key[:12])
	return nil
}

// Prune deletes entries written by format versions other than the given
// one. Returns the number of entries removed.
func (c *Cache) Prune(formatVersion uint16) (int64, error) {
	res, err := c.db.Exec("DELETE FROM compiled WHERE format_version != ?", formatVersion)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
