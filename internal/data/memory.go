package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
)

// MemoryLoader parses every chain file under a directory up front and serves
// the rows from memory.
type MemoryLoader struct {
	snapshots map[string]*Snapshot // key: upper-cased symbol
	logger    *zap.Logger
}

// Compile-time interface verification
var _ ChainLoader = (*MemoryLoader)(nil)

func NewMemoryLoader(dataDir string, logger *zap.Logger) (*MemoryLoader, error) {
	loader := &MemoryLoader{
		snapshots: make(map[string]*Snapshot),
		logger:    logger,
	}

	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isChainFile(path) {
			return nil
		}

		symbol := SymbolFromPath(path)
		if existing, ok := loader.snapshots[symbol]; ok {
			logger.Warn("duplicate symbol, keeping first file",
				zap.String("symbol", symbol),
				zap.String("kept", existing.Path),
				zap.String("skipped", path),
			)
			return nil
		}

		rows, err := chain.ReadFile(path)
		if err != nil {
			logger.Warn("failed to load file", zap.String("path", path), zap.Error(err))
			return nil
		}

		loader.snapshots[symbol] = &Snapshot{
			Symbol:   symbol,
			Path:     path,
			LoadedAt: time.Now(),
			Rows:     rows,
		}
		logger.Info("loaded chain",
			zap.String("symbol", symbol),
			zap.Int("rows", len(rows)),
		)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking data directory: %w", err)
	}

	if len(loader.snapshots) == 0 {
		return nil, fmt.Errorf("no chain files found in %s", dataDir)
	}

	return loader, nil
}

func isChainFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".jsonl":
		return true
	}
	return false
}

func (m *MemoryLoader) Get(symbol string) (*Snapshot, error) {
	snap, ok := m.snapshots[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}

func (m *MemoryLoader) Symbols() []string {
	symbols := make([]string, 0, len(m.snapshots))
	for s := range m.snapshots {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func (m *MemoryLoader) Close() error {
	m.snapshots = nil
	return nil
}
