package data

import "sync"

// ReloadableLoader wraps a ChainLoader and allows atomic replacement.
// Reads delegate to the current underlying loader, so chain files can be
// re-read without stopping the server.
type ReloadableLoader struct {
	mu      sync.RWMutex
	current ChainLoader
}

func NewReloadableLoader(initial ChainLoader) *ReloadableLoader {
	return &ReloadableLoader{
		current: initial,
	}
}

// Swap atomically replaces the underlying loader and returns the old one.
// Caller is responsible for closing the old loader after swap.
func (r *ReloadableLoader) Swap(newLoader ChainLoader) ChainLoader {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.current
	r.current = newLoader
	return old
}

func (r *ReloadableLoader) Get(symbol string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Get(symbol)
}

func (r *ReloadableLoader) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Symbols()
}

// Close releases any resources held by the current loader.
func (r *ReloadableLoader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Close()
}

// Compile-time interface verification
var _ ChainLoader = (*ReloadableLoader)(nil)
