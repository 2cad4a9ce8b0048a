package corpus

import (
	"sync"

	"github.com/gemgem/backend/internal/domain"
)

// Store holds the active corpus snapshot. Snapshots are immutable; a
// refresh builds a complete replacement off to the side and swaps it in
// atomically, so in-flight queries never observe a partially updated
// corpus.
type Store struct {
	mutex    sync.RWMutex
	snapshot *domain.CorpusSnapshot
}

// NewStore creates an empty store; Current returns nil until the first Swap
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil before the first load
func (s *Store) Current() *domain.CorpusSnapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshot
}

// Swap installs a fully built snapshot as the active one
func (s *Store) Swap(snapshot *domain.CorpusSnapshot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot = snapshot
}
