package data

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("symbol not found")

// ChainLoader provides read-only access to loaded chain snapshots.
type ChainLoader interface {
	// Get returns the snapshot for symbol. Lookups are case-insensitive.
	Get(symbol string) (*Snapshot, error)

	// Symbols returns every loaded symbol in sorted order
	Symbols() []string

	// Close releases any resources
	Close() error
}

// SymbolFromPath derives a symbol from a chain file name: "data/spy.csv" -> "SPY".
func SymbolFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}
