// Package history keeps the append-only record of closed polls.
package history

import (
	"sync"

	"github.com/classpulse/backend/internal/models"
)

// Log is an in-memory append-only store of closed polls, in close order.
type Log struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
}

// NewLog creates an empty history log.
func NewLog() *Log {
	return &Log{}
}

// Record appends a closed-poll snapshot.
func (l *Log) Record(entry models.HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

// All returns the entries in close order. The returned slice is a copy.
func (l *Log) All() []models.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded polls.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
