package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"

	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
)

// Config sizes the tiers. An empty DiskPath disables the disk tier.
type Config struct {
	L1Size       int
	L1TTL        time.Duration
	L2Size       int
	L2TTL        time.Duration
	DiskPath     string
	DiskMaxBytes int64
	DiskTTL      time.Duration

	// Clock drives memory tier expiry and Now drives disk expiry; both
	// default to real time.
	Clock  gcache.Clock
	Now    func() time.Time
	Logger *slog.Logger
}

// DefaultConfig returns tier sizes suited to a single process.
func DefaultConfig() Config {
	return Config{
		L1Size:       256,
		L1TTL:        5 * time.Minute,
		L2Size:       2048,
		L2TTL:        time.Hour,
		DiskMaxBytes: 50 << 20,
		DiskTTL:      24 * time.Hour,
	}
}

// Tiered probes L1, then L2, then disk, promoting hits into faster tiers.
type Tiered struct {
	l1     *MemoryTier
	l2     *MemoryTier
	disk   *DiskTier
	logger *slog.Logger
	group  singleflight.Group

	l1Hits   atomic.Int64
	l2Hits   atomic.Int64
	diskHits atomic.Int64
	misses   atomic.Int64
	puts     atomic.Int64

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// New builds the cache, opening the disk tier when configured.
func New(cfg Config) (*Tiered, error) {
	d := DefaultConfig()
	if cfg.L1Size <= 0 {
		cfg.L1Size = d.L1Size
	}
	if cfg.L1TTL <= 0 {
		cfg.L1TTL = d.L1TTL
	}
	if cfg.L2Size <= 0 {
		cfg.L2Size = d.L2Size
	}
	if cfg.L2TTL <= 0 {
		cfg.L2TTL = d.L2TTL
	}
	if cfg.DiskTTL <= 0 {
		cfg.DiskTTL = d.DiskTTL
	}

	c := &Tiered{
		l1:           NewMemoryTier("l1", cfg.L1Size, cfg.L1TTL, cfg.Clock),
		l2:           NewMemoryTier("l2", cfg.L2Size, cfg.L2TTL, cfg.Clock),
		logger:       logging.OrDiscard(cfg.Logger),
		shutdownChan: make(chan struct{}),
	}

	if cfg.DiskPath != "" {
		disk, err := OpenDiskTier(DiskConfig{
			Path:     cfg.DiskPath,
			MaxBytes: cfg.DiskMaxBytes,
			TTL:      cfg.DiskTTL,
			Now:      cfg.Now,
			Logger:   cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("opening disk cache: %w", err)
		}
		c.disk = disk
	}

	return c, nil
}

// Get returns the value stored under key from the fastest tier holding it.
func (c *Tiered) Get(key string) ([]byte, bool) {
	if v, ok := c.l1.Get(key); ok {
		c.l1Hits.Add(1)
		return v, true
	}
	if v, remaining, ok := c.l2.GetWithTTL(key); ok {
		c.l2Hits.Add(1)
		c.l1.Set(key, v, promotionTTL(c.l1, remaining))
		return v, true
	}
	if c.disk != nil {
		if v, remaining, ok := c.disk.GetWithTTL(key); ok {
			c.diskHits.Add(1)
			c.l2.Set(key, v, promotionTTL(c.l2, remaining))
			c.l1.Set(key, v, promotionTTL(c.l1, remaining))
			return v, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// promotionTTL caps a promoted entry at its remaining lifetime so promotion
// never outlives the slower tier's deadline. Zero remaining means no deadline.
func promotionTTL(tier *MemoryTier, remaining time.Duration) time.Duration {
	if remaining > 0 && (tier.TTL() <= 0 || remaining < tier.TTL()) {
		return remaining
	}
	return tier.TTL()
}

// Put writes value to every tier for ttl. A non-positive ttl uses each
// tier's default lifetime.
func (c *Tiered) Put(key string, value []byte, ttl time.Duration) {
	c.puts.Add(1)
	c.l1.Set(key, value, ttl)
	c.l2.Set(key, value, ttl)
	if c.disk != nil {
		c.disk.Set(key, value, ttl)
	}
}

// PutStrategy writes value to the tiers and lifetimes the named strategy selects.
func (c *Tiered) PutStrategy(strategy, key string, value []byte) {
	s := StrategyFor(strategy)
	c.puts.Add(1)
	if s.L1TTL > 0 {
		c.l1.Set(key, value, s.L1TTL)
	}
	if s.L2TTL > 0 {
		c.l2.Set(key, value, s.L2TTL)
	}
	if s.UsesDisk() && c.disk != nil {
		c.disk.Set(key, value, s.DiskTTL)
	}
}

// Remove drops key from every tier.
func (c *Tiered) Remove(key string) {
	c.l1.Remove(key)
	c.l2.Remove(key)
	if c.disk != nil {
		c.disk.Remove(key)
	}
}

// InvalidatePattern drops every entry whose key starts with prefix and
// returns the number of entries removed across tiers.
func (c *Tiered) InvalidatePattern(prefix string) int {
	removed := c.l1.RemovePrefix(prefix) + c.l2.RemovePrefix(prefix)
	if c.disk != nil {
		removed += c.disk.RemovePrefix(prefix)
	}
	logging.LogOperation(c.logger, "cache_invalidated",
		slog.String("prefix", prefix),
		slog.Int("removed", removed))
	return removed
}

// Stats reports hit and miss counters.
func (c *Tiered) Stats() models.CacheStats {
	stats := models.CacheStats{
		L1Hits:    c.l1Hits.Load(),
		L2Hits:    c.l2Hits.Load(),
		DiskHits:  c.diskHits.Load(),
		Misses:    c.misses.Load(),
		Puts:      c.puts.Load(),
		Evictions: c.l1.Evictions() + c.l2.Evictions(),
	}
	if c.disk != nil {
		stats.Evictions += c.disk.Evictions()
		stats.DiskBytes = c.disk.Size()
	}

	hits := stats.L1Hits + stats.L2Hits + stats.DiskHits
	if total := hits + stats.Misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// Cleanup drops expired entries from every tier.
func (c *Tiered) Cleanup() int {
	removed := c.l1.Cleanup() + c.l2.Cleanup()
	if c.disk != nil {
		removed += c.disk.Cleanup()
	}
	return removed
}

// Start runs Cleanup every interval until Shutdown.
func (c *Tiered) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.cleanupPeriodically(interval)
	})
}

func (c *Tiered) cleanupPeriodically(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.Cleanup(); n > 0 {
				logging.LogOperation(c.logger, "cache_cleanup", slog.Int("removed", n))
			}
		case <-c.shutdownChan:
			return
		}
	}
}

// Shutdown stops the cleanup loop and closes the disk tier. Safe to call
// more than once.
func (c *Tiered) Shutdown() {
	c.shutdownOnce.Do(func() {
		close(c.shutdownChan)
		c.wg.Wait()
		if c.disk != nil {
			logging.SafeCloseWithLogging(c.disk, c.logger, "cache_disk")
		}
	})
}
