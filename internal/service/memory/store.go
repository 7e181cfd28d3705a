package memory

import (
	"sync"

	"github.com/zhouzirui/z-memo/backend/internal/model/memory"
)

// Store keeps short-term conversation memory per user for the lifetime of the process.
type Store struct {
	mu        sync.RWMutex
	exchanges map[string][]memory.Exchange
	limit     int
}

// NewStore creates an empty store. limit caps the exchanges retained per user;
// values <= 0 disable the cap.
func NewStore(limit int) *Store {
	return &Store{
		exchanges: make(map[string][]memory.Exchange),
		limit:     limit,
	}
}

// Get returns a copy of everything stored for userID, registering unseen users.
func (s *Store) Get(userID string) []memory.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.exchanges[userID]
	if !ok {
		s.exchanges[userID] = make([]memory.Exchange, 0, 4)
		return []memory.Exchange{}
	}

	copied := make([]memory.Exchange, len(history))
	copy(copied, history)
	return copied
}

// Append adds exchange to the end of userID's history, evicting the oldest entries past the cap.
func (s *Store) Append(userID string, exchange memory.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.exchanges[userID], exchange)
	if s.limit > 0 && len(history) > s.limit {
		trimmed := make([]memory.Exchange, s.limit, s.limit+1)
		copy(trimmed, history[len(history)-s.limit:])
		history = trimmed
	}
	s.exchanges[userID] = history
}

// Windowed returns at most the last w exchanges, oldest first.
func (s *Store) Windowed(userID string, w int) []memory.Exchange {
	if w <= 0 {
		return []memory.Exchange{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.exchanges[userID]
	start := 0
	if len(history) > w {
		start = len(history) - w
	}

	window := make([]memory.Exchange, len(history)-start)
	copy(window, history[start:])
	return window
}

// Len reports how many exchanges are stored for userID.
func (s *Store) Len(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges[userID])
}

// Users reports how many identifiers have been registered.
func (s *Store) Users() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// Reset drops the history for userID. The identifier stays registered.
func (s *Store) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges[userID] = make([]memory.Exchange, 0, 4)
}
