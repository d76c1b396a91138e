package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"darkroom/internal/logging"
	"darkroom/internal/metrics"
)

// IndexFilename is the side-car database stored next to the processed
// output directory.
const IndexFilename = ".darkroom-cache.db"

// schemaVersion invalidates all existing entries when the schema or the
// key computation changes.
const schemaVersion = 1

const defaultTimeout = 5 * time.Second

// Artifact describes a previously produced output known to the index.
type Artifact struct {
	// Path is relative to the output directory.
	Path   string
	Width  int
	Height int
}

// Index is the persisted cache of produced artifacts. It is safe for
// concurrent use: reads go through database/sql's pool, writes are
// serialized with a mutex (write duration is negligible next to encode
// duration).
//
// A degraded Index (failed open, corrupt file) behaves as permanently
// empty: every lookup misses and records are dropped. Builds proceed.
type Index struct {
	db        *sql.DB
	outputDir string
	noCache   bool
	mu        sync.Mutex
}

// Open loads or creates the index side-car for an output directory.
// It never returns an error: any failure degrades to an empty index with
// a logged warning. When noCache is set, lookups always miss for the
// lifetime of this Index but fresh results are still recorded.
func Open(ctx context.Context, outputDir string, noCache bool) *Index {
	idx := &Index{outputDir: outputDir, noCache: noCache}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logging.Warn("cache index unavailable, proceeding without cache: %v", err)
		return idx
	}

	path := filepath.Join(outputDir, IndexFilename)
	db, err := openAndMigrate(ctx, path)
	if err != nil {
		logging.Warn("cache index at %s unreadable (%v), recreating", path, err)
		// Corrupt or unreadable: drop the file and start fresh
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("could not remove corrupt cache index: %v", rmErr)
			return idx
		}
		db, err = openAndMigrate(ctx, path)
		if err != nil {
			logging.Warn("cache index recreation failed, proceeding without cache: %v", err)
			return idx
		}
	}

	idx.db = db
	metrics.CacheEntries.Set(float64(idx.Len(ctx)))
	return idx
}

func openAndMigrate(ctx context.Context, path string) (*sql.DB, error) {
	// busy_timeout prevents "database is locked" errors when workers
	// record results concurrently
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		logging.Info("cache index schema v%d is stale, discarding entries", version)
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS artifacts"); err != nil {
			db.Close()
			return nil, fmt.Errorf("drop stale schema: %w", err)
		}
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS artifacts (
		output_path TEXT NOT NULL PRIMARY KEY,
		cache_key   TEXT NOT NULL,
		width       INTEGER NOT NULL,
		height      INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_key ON artifacts(cache_key);
	PRAGMA user_version = %d;`, schemaVersion)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return db, nil
}

// Lookup reports whether outputPath already holds the artifact for key.
// A hit requires a matching row and the file still existing on disk; a
// stale row (file deleted externally) is dropped and reported as a miss.
func (i *Index) Lookup(ctx context.Context, key, outputPath string) (Artifact, bool) {
	if i.db == nil || i.noCache {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.LookupMiss).Inc()
		return Artifact{}, false
	}

	var a Artifact
	a.Path = outputPath
	err := i.db.QueryRowContext(ctx,
		"SELECT width, height FROM artifacts WHERE output_path = ? AND cache_key = ?",
		outputPath, key,
	).Scan(&a.Width, &a.Height)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(metrics.LookupMiss).Inc()
		return Artifact{}, false
	}

	if !i.exists(outputPath) {
		i.drop(ctx, outputPath)
		metrics.CacheLookupsTotal.WithLabelValues(metrics.LookupStale).Inc()
		return Artifact{}, false
	}

	metrics.CacheLookupsTotal.WithLabelValues(metrics.LookupHit).Inc()
	return a, true
}

// FindAnyExisting returns some artifact produced for key in this run or a
// prior one, regardless of its output path. It backs the
// rename-without-reencode optimization: byte-identical output that
// already exists can be copied to a new target path.
func (i *Index) FindAnyExisting(ctx context.Context, key string) (Artifact, bool) {
	if i.db == nil || i.noCache {
		return Artifact{}, false
	}

	rows, err := i.db.QueryContext(ctx,
		"SELECT output_path, width, height FROM artifacts WHERE cache_key = ?", key)
	if err != nil {
		return Artifact{}, false
	}
	defer rows.Close()

	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Path, &a.Width, &a.Height); err != nil {
			continue
		}
		if i.exists(a.Path) {
			return a, true
		}
		// Stale rows are cleaned up opportunistically
		i.drop(ctx, a.Path)
	}
	return Artifact{}, false
}

// Record inserts or overwrites the entry for an output path after a
// successful encode or copy. Errors are logged, not returned: a failed
// record only costs a future cache miss.
func (i *Index) Record(ctx context.Context, key string, artifact Artifact) {
	if i.db == nil {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	_, err := i.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO artifacts (output_path, cache_key, width, height, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		artifact.Path, key, artifact.Width, artifact.Height, time.Now().Unix(),
	)
	if err != nil {
		logging.Warn("failed to record cache entry for %s: %v", artifact.Path, err)
		return
	}
	metrics.CacheEntries.Set(float64(i.Len(ctx)))
}

// Len returns the number of entries in the index.
func (i *Index) Len(ctx context.Context) int {
	if i.db == nil {
		return 0
	}
	var n int
	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close releases the underlying database. Safe on a degraded index.
func (i *Index) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}

// AbsPath resolves an index-relative artifact path against the output
// directory.
func (i *Index) AbsPath(rel string) string {
	return filepath.Join(i.outputDir, rel)
}

func (i *Index) exists(rel string) bool {
	_, err := os.Stat(i.AbsPath(rel))
	return err == nil
}

func (i *Index) drop(ctx context.Context, outputPath string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, err := i.db.ExecContext(ctx, "DELETE FROM artifacts WHERE output_path = ?", outputPath); err != nil {
		logging.Debug("failed to drop stale cache entry %s: %v", outputPath, err)
	}
}
