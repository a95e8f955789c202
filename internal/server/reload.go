package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/data"
	"github.com/dgnsrekt/gexbot-analyzer/internal/metrics"
	"github.com/dgnsrekt/gexbot-analyzer/internal/notify"
)

var ErrReloadInProgress = errors.New("reload already in progress")

// ReloadManager re-reads the chain directory and swaps the result into the
// shared loader. A failed reload leaves the current snapshots in place.
type ReloadManager struct {
	loader   *data.ReloadableLoader
	dataDir  string
	metrics  *metrics.Metrics
	notifier notify.Notifier
	logger   *zap.Logger

	// Reload state
	isReloading atomic.Bool
	reloadMu    sync.Mutex // prevents concurrent reloads

	loadedAt time.Time
	stateMu  sync.RWMutex
}

func NewReloadManager(loader *data.ReloadableLoader, dataDir string, m *metrics.Metrics, logger *zap.Logger) *ReloadManager {
	return &ReloadManager{
		loader:   loader,
		dataDir:  dataDir,
		metrics:  m,
		notifier: notify.NoopNotifier{},
		logger:   logger,
		loadedAt: time.Now(),
	}
}

// SetNotifier replaces the default no-op reload notifier.
func (rm *ReloadManager) SetNotifier(n notify.Notifier) {
	rm.notifier = n
}

func (rm *ReloadManager) Loader() *data.ReloadableLoader {
	return rm.loader
}

// IsReloading returns true if a reload is currently in progress.
func (rm *ReloadManager) IsReloading() bool {
	return rm.isReloading.Load()
}

// LoadedAt returns the timestamp when the current data was loaded.
func (rm *ReloadManager) LoadedAt() time.Time {
	rm.stateMu.RLock()
	defer rm.stateMu.RUnlock()
	return rm.loadedAt
}

// ReloadResult contains the result of a successful reload operation.
type ReloadResult struct {
	PreviousSymbols int       `json:"previous_symbols"`
	SymbolsLoaded   int       `json:"symbols_loaded"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// Reload loads every chain file from the data directory and swaps it in.
func (rm *ReloadManager) Reload(ctx context.Context) (*ReloadResult, error) {
	// Prevent concurrent reloads
	if !rm.reloadMu.TryLock() {
		return nil, ErrReloadInProgress
	}
	defer rm.reloadMu.Unlock()

	started := time.Now()
	previous := len(rm.loader.Symbols())
	result, err := rm.reload(ctx, previous)
	if rm.metrics != nil {
		rm.metrics.ObserveReload(err)
	}

	ev := notify.ReloadEvent{
		DataDir:         rm.dataDir,
		PreviousSymbols: previous,
		Duration:        time.Since(started),
		Err:             err,
	}
	if result != nil {
		ev.SymbolsLoaded = result.SymbolsLoaded
	}
	if nerr := rm.notifier.Reloaded(context.WithoutCancel(ctx), ev); nerr != nil {
		rm.logger.Warn("reload notification failed", zap.Error(nerr))
	}

	return result, err
}

func (rm *ReloadManager) reload(ctx context.Context, previous int) (*ReloadResult, error) {
	rm.isReloading.Store(true)
	defer rm.isReloading.Store(false)

	rm.logger.Info("starting hot reload",
		zap.String("dataDir", rm.dataDir),
		zap.Int("previousSymbols", previous),
	)

	newLoader, err := data.NewMemoryLoader(rm.dataDir, rm.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load chains from %s: %w", rm.dataDir, err)
	}

	// Abandon the new snapshots if the caller went away mid-load
	if err := ctx.Err(); err != nil {
		if closeErr := newLoader.Close(); closeErr != nil {
			rm.logger.Warn("failed to close new loader", zap.Error(closeErr))
		}
		return nil, err
	}

	// Swap the loader atomically
	oldLoader := rm.loader.Swap(newLoader)

	rm.stateMu.Lock()
	rm.loadedAt = time.Now()
	loadedAt := rm.loadedAt
	rm.stateMu.Unlock()

	// Close old loader (release resources)
	if err := oldLoader.Close(); err != nil {
		rm.logger.Warn("failed to close old loader", zap.Error(err))
	}

	loaded := len(newLoader.Symbols())
	rm.logger.Info("hot reload complete",
		zap.Int("previousSymbols", previous),
		zap.Int("symbolsLoaded", loaded),
		zap.Time("loadedAt", loadedAt),
	)

	return &ReloadResult{
		PreviousSymbols: previous,
		SymbolsLoaded:   loaded,
		LoadedAt:        loadedAt,
	}, nil
}
