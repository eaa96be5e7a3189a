package devserver

import (
	"context"
	"sync"
	"time"
)

// LoginLimiter is satisfied by the redis RateLimiter and by memoryLimiter.
type LoginLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type window struct {
	count int
	reset time.Time
}

// memoryLimiter is a fixed-window counter for single-process runs.
type memoryLimiter struct {
	mu  sync.Mutex
	hit map[string]*window
	now func() time.Time
}

func NewMemoryLimiter() LoginLimiter {
	return &memoryLimiter{hit: make(map[string]*window), now: time.Now}
}

func (m *memoryLimiter) Allow(ctx context.Context, key string, limit int, d time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	w, ok := m.hit[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(d)}
		m.hit[key] = w
	}
	w.count++
	return w.count <= limit, nil
}
