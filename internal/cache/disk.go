package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"railnet.dev/railnet/internal/logging"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const diskSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key         TEXT PRIMARY KEY,
	value       BLOB NOT NULL,
	created_at  INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL,
	last_access INTEGER NOT NULL,
	size        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_last_access ON cache_entries(last_access);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// evictTarget is the fraction of the byte budget eviction shrinks to.
const evictTarget = 0.8

// DiskTier persists JSON values in SQLite. A single mutex serialises every
// read, write and eviction.
type DiskTier struct {
	db        *sql.DB
	mu        sync.Mutex
	ttl       time.Duration
	maxBytes  int64
	now       func() time.Time
	logger    *slog.Logger
	evictions int64
}

// DiskConfig configures OpenDiskTier.
type DiskConfig struct {
	Path     string
	MaxBytes int64
	TTL      time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// OpenDiskTier opens or creates the cache database at cfg.Path.
func OpenDiskTier(cfg DiskConfig) (*DiskTier, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring cache database: %w", err)
	}
	if _, err := db.ExecContext(ctx, diskSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &DiskTier{
		db:       db,
		ttl:      cfg.TTL,
		maxBytes: cfg.MaxBytes,
		now:      now,
		logger:   logging.OrDiscard(cfg.Logger),
	}, nil
}

func (d *DiskTier) TTL() time.Duration { return d.ttl }

// Get returns a live entry. Expired and corrupt rows are deleted and
// reported as misses.
func (d *DiskTier) Get(key string) ([]byte, bool) {
	b, _, ok := d.GetWithTTL(key)
	return b, ok
}

// GetWithTTL is Get plus the entry's remaining lifetime.
func (d *DiskTier) GetWithTTL(key string) ([]byte, time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx := context.Background()
	var (
		value     []byte
		expiresAt int64
		size      int64
	)
	err := d.db.QueryRowContext(ctx,
		"SELECT value, expires_at, size FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt, &size)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.LogError(d.logger, "Disk cache read failed", err, slog.String("key", key))
		}
		return nil, 0, false
	}

	now := d.now().UnixNano()
	if expiresAt <= now {
		d.deleteLocked(ctx, key)
		return nil, 0, false
	}
	if int64(len(value)) != size || !json.Valid(value) {
		logging.LogWarning(d.logger, "Removing corrupt disk cache entry", slog.String("key", key))
		d.deleteLocked(ctx, key)
		return nil, 0, false
	}

	if _, err := d.db.ExecContext(ctx, "UPDATE cache_entries SET last_access = ? WHERE key = ?", now, key); err != nil {
		logging.LogError(d.logger, "Disk cache touch failed", err, slog.String("key", key))
	}
	return value, time.Duration(expiresAt - now), true
}

// Set writes value for ttl, or the tier default when ttl is not positive.
// Failures are logged and swallowed.
func (d *DiskTier) Set(key string, value []byte, ttl time.Duration) {
	if !json.Valid(value) {
		logging.LogWarning(d.logger, "Refusing to persist non-JSON cache value", slog.String("key", key))
		return
	}
	if ttl <= 0 {
		ttl = d.ttl
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx := context.Background()
	now := d.now().UnixNano()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, created_at, expires_at, last_access, size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			last_access = excluded.last_access,
			size = excluded.size`,
		key, value, now, now+ttl.Nanoseconds(), now, len(value))
	if err != nil {
		logging.LogError(d.logger, "Disk cache write failed", err, slog.String("key", key))
		return
	}

	if err := d.evictLocked(ctx); err != nil {
		logging.LogError(d.logger, "Disk cache eviction failed", err)
	}
}

func (d *DiskTier) Remove(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteLocked(context.Background(), key)
}

// RemovePrefix deletes every entry whose key starts with prefix.
func (d *DiskTier) RemovePrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.ExecContext(context.Background(),
		"DELETE FROM cache_entries WHERE substr(key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		logging.LogError(d.logger, "Disk cache invalidation failed", err, slog.String("prefix", prefix))
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

// Cleanup deletes expired entries.
func (d *DiskTier) Cleanup() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.ExecContext(context.Background(),
		"DELETE FROM cache_entries WHERE expires_at <= ?", d.now().UnixNano())
	if err != nil {
		logging.LogError(d.logger, "Disk cache cleanup failed", err)
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

// Size is the total stored value bytes.
func (d *DiskTier) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	size, err := d.sizeLocked(context.Background())
	if err != nil {
		logging.LogError(d.logger, "Disk cache size query failed", err)
	}
	return size
}

// Len counts stored rows, expired or not.
func (d *DiskTier) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	var n int
	if err := d.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM cache_entries").Scan(&n); err != nil {
		logging.LogError(d.logger, "Disk cache count failed", err)
	}
	return n
}

func (d *DiskTier) Evictions() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.evictions
}

func (d *DiskTier) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}

func (d *DiskTier) deleteLocked(ctx context.Context, key string) bool {
	res, err := d.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		logging.LogError(d.logger, "Disk cache delete failed", err, slog.String("key", key))
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (d *DiskTier) sizeLocked(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	if err := d.db.QueryRowContext(ctx, "SELECT SUM(size) FROM cache_entries").Scan(&total); err != nil {
		return 0, err
	}
	return total.Int64, nil
}

// evictLocked drops least recently accessed entries once the byte budget is
// exceeded, stopping at evictTarget of the budget.
func (d *DiskTier) evictLocked(ctx context.Context) (err error) {
	if d.maxBytes <= 0 {
		return nil
	}

	total, err := d.sizeLocked(ctx)
	if err != nil || total <= d.maxBytes {
		return err
	}
	target := int64(float64(d.maxBytes) * evictTarget)

	rows, err := d.db.QueryContext(ctx, "SELECT key, size FROM cache_entries ORDER BY last_access ASC, created_at ASC")
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}
	var victims []string
	for rows.Next() && total > target {
		var key string
		var size int64
		if err := rows.Scan(&key, &size); err != nil {
			logging.SafeCloseWithLogging(rows, d.logger, "cache_disk_rows")
			return fmt.Errorf("scanning cache entry: %w", err)
		}
		victims = append(victims, key)
		total -= size
	}
	logging.SafeCloseWithLogging(rows, d.logger, "cache_disk_rows")

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting eviction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, d.logger, "cache_disk_evict")

	for _, key := range victims {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
			return fmt.Errorf("evicting %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing eviction: %w", err)
	}

	d.evictions += int64(len(victims))
	return nil
}
