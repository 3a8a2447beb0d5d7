package middleware

import (
	"sync"
	"time"
)

type windowInfo struct {
	start time.Time
	count int64
}

// MemoryLimiter is a fixed-window counter kept in process memory. It backs the
// rate limiter when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowInfo
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*windowInfo),
		now:     time.Now,
	}
}

// Incr counts a hit for key and returns the count within the current window.
func (m *MemoryLimiter) Incr(key string, window time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	wi, ok := m.windows[key]
	if !ok || now.Sub(wi.start) > window {
		m.windows[key] = &windowInfo{start: now, count: 1}
		m.sweep(now, window)
		return 1
	}
	wi.count++
	return wi.count
}

// sweep drops windows that expired long ago so the map does not grow forever.
func (m *MemoryLimiter) sweep(now time.Time, window time.Duration) {
	if len(m.windows) < 1024 {
		return
	}
	for k, wi := range m.windows {
		if now.Sub(wi.start) > 2*window {
			delete(m.windows, k)
		}
	}
}
