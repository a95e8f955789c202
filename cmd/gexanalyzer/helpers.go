package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-analyzer/internal/chain"
	"github.com/dgnsrekt/gexbot-analyzer/internal/config"
	"github.com/dgnsrekt/gexbot-analyzer/internal/data"
	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

// newAnalyzer builds the engine from the analysis section of the config.
func newAnalyzer(a config.AnalysisConfig) *gex.Analyzer {
	return gex.NewAnalyzer(
		gex.WithHalfWidth(a.HalfWidth),
		gex.WithClassifyOptions(gex.ClassifyOptions{TopN: a.TopN, HeatFraction: a.HeatFraction}),
		gex.WithSolver(gex.NewSolver(a.Workers, a.ParallelThreshold)),
	)
}

// loadChain accepts either a chain file path or a symbol loaded from the data directory.
func loadChain(arg string, dataDir string, logger *zap.Logger) (*data.Snapshot, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		rows, err := chain.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		return &data.Snapshot{Symbol: data.SymbolFromPath(arg), Path: arg, Rows: rows}, nil
	}

	if filepath.Ext(arg) != "" {
		return nil, fmt.Errorf("chain file not found: %s", arg)
	}

	loader, err := data.NewMemoryLoader(dataDir, logger)
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	snap, err := loader.Get(arg)
	if err != nil {
		return nil, fmt.Errorf("%s in %s: %w (loaded: %s)", arg, dataDir, err, strings.Join(loader.Symbols(), ", "))
	}
	return snap, nil
}

// includeSet resolves --expirations and --exclude into a gex.Params inclusion set.
// Without either flag every expiration dated today or later is selected.
func includeSet(rows []gex.Row, include, exclude []string, today time.Time) (map[string]bool, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("--expirations and --exclude are mutually exclusive")
	}
	if len(include) > 0 {
		return chain.IncludeSet(include), nil
	}
	return chain.ExcludeSet(rows, today, exclude), nil
}
