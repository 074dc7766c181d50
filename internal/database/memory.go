package database

import (
	"context"
	"sync"
	"time"

	"github.com/trentd187/f1-fansite/internal/models"
)

// MemoryUpdateLog keeps the last MaxRecent updates in memory.
// It's what the server uses when no DATABASE_URL is configured, and what tests use.
type MemoryUpdateLog struct {
	mu      sync.Mutex
	updates []models.DataUpdate // oldest first
}

// NewMemoryUpdateLog returns an empty in-memory log.
func NewMemoryUpdateLog() *MemoryUpdateLog {
	return &MemoryUpdateLog{}
}

// Record appends u, dropping the oldest entry once MaxRecent is reached.
func (l *MemoryUpdateLog) Record(_ context.Context, u *models.DataUpdate) error {
	prepare(u, time.Now())

	l.mu.Lock()
	defer l.mu.Unlock()

	l.updates = append(l.updates, *u)
	if len(l.updates) > MaxRecent {
		l.updates = l.updates[len(l.updates)-MaxRecent:]
	}
	return nil
}

// Recent returns copies of the newest entries.
func (l *MemoryUpdateLog) Recent(_ context.Context, limit int) ([]models.DataUpdate, error) {
	limit = clampLimit(limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	if limit > len(l.updates) {
		limit = len(l.updates)
	}
	out := make([]models.DataUpdate, 0, limit)
	for i := len(l.updates) - 1; i >= len(l.updates)-limit; i-- {
		out = append(out, l.updates[i])
	}
	return out, nil
}
