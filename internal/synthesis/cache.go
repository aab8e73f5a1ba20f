package synthesis

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"
)

// Cache stores synthesized clips in SQLite keyed by a content hash of the
// provider identity and the spoken text. Re-runs and post-edit resumes only
// pay for lines that actually changed.
type Cache struct {
	db   *sql.DB
	path string
}

// Key derives the content-addressed cache key for one provider/text pair.
func Key(providerName, text string) string {
	sum := blake3.Sum256([]byte(providerName + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// OpenCache initializes or connects to the clip cache database.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open clip cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS clips (
	key        TEXT PRIMARY KEY,
	provider   TEXT NOT NULL,
	data       BLOB NOT NULL,
	created_at TEXT NOT NULL
)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply clip cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Get returns the cached clip for key, if present. Lookup failures are
// treated as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.db == nil {
		return nil, false
	}
	var data []byte
	err := c.db.QueryRowContext(ctx, "SELECT data FROM clips WHERE key = ?", key).Scan(&data)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// Put stores a clip. Write failures are ignored: the cache is advisory.
func (c *Cache) Put(ctx context.Context, key, providerName string, data []byte) {
	if c == nil || c.db == nil || len(data) == 0 {
		return
	}
	_, _ = c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO clips (key, provider, data, created_at) VALUES (?, ?, ?, ?)",
		key, providerName, data, time.Now().UTC().Format(time.RFC3339))
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
