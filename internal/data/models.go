package data

import (
	"time"

	"github.com/dgnsrekt/gexbot-analyzer/internal/gex"
)

// Snapshot is one symbol's option chain as read from disk.
type Snapshot struct {
	Symbol   string    `json:"symbol"`
	Path     string    `json:"path"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     []gex.Row `json:"-"`
}
