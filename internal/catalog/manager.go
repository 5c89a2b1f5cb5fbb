package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"railnet.dev/railnet/internal/logging"
)

// ErrNoLoader is returned by Reload on a manager built from a fixed catalog.
var ErrNoLoader = errors.New("catalog manager has no loader")

// Manager owns the current catalog snapshot and swaps it on reload.
type Manager struct {
	loader       *Loader
	logger       *slog.Logger
	current      *Catalog
	lastUpdated  time.Time
	mu           sync.RWMutex
	reloadMu     sync.Mutex
	hooks        []func(*Catalog)
	hooksMu      sync.Mutex
	shutdownChan chan struct{}
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// NewManager performs the initial load. Any load error, including a failed
// integrity check, is fatal here.
func NewManager(ctx context.Context, loader *Loader) (*Manager, error) {
	cat, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	m := newManager(cat, loader.Logger)
	m.loader = loader
	return m, nil
}

// NewStaticManager wraps a catalog that is never reloaded.
func NewStaticManager(cat *Catalog, logger *slog.Logger) *Manager {
	return newManager(cat, logger)
}

func newManager(cat *Catalog, logger *slog.Logger) *Manager {
	return &Manager{
		logger:       logging.OrDiscard(logger),
		current:      cat,
		lastUpdated:  time.Now(),
		shutdownChan: make(chan struct{}),
	}
}

// Catalog returns the current snapshot. The returned value is immutable and
// stays valid after a reload.
func (m *Manager) Catalog() *Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LastUpdated returns the time of the last successful load.
func (m *Manager) LastUpdated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}

// OnReload registers fn to run after every successful reload with the new
// catalog.
func (m *Manager) OnReload(fn func(*Catalog)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Reload loads a fresh catalog and swaps it in. On any error the current
// catalog is kept.
func (m *Manager) Reload(ctx context.Context) error {
	if m.loader == nil {
		return ErrNoLoader
	}

	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	cat, err := m.loader.Load(ctx)
	if err != nil {
		logging.LogError(m.logger, "Catalog reload failed, keeping previous snapshot", err)
		return err
	}

	m.mu.Lock()
	m.current = cat
	m.lastUpdated = time.Now()
	m.mu.Unlock()

	m.hooksMu.Lock()
	hooks := append([]func(*Catalog){}, m.hooks...)
	m.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(cat)
	}

	logging.LogOperation(m.logger, "catalog_reloaded",
		slog.Int("lines", cat.LineCount()),
		slog.Int("stations", cat.StationCount()))
	return nil
}

// Start reloads the catalog every interval until Shutdown. It is a no-op for
// non-positive intervals or managers without a loader.
func (m *Manager) Start(interval time.Duration) {
	if interval <= 0 || m.loader == nil {
		return
	}
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.reloadPeriodically(interval)
	})
}

func (m *Manager) reloadPeriodically(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			_ = m.Reload(ctx)
			cancel()
		case <-m.shutdownChan:
			m.logger.Info("Shutting down catalog reloads")
			return
		}
	}
}

// Shutdown stops background reloads. Safe to call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()
	})
}
