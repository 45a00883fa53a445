package server

import (
	"sync"
	"time"
)

const limiterSweepInterval = 5 * time.Minute

type window struct {
	count   int
	resetAt time.Time
}

// fixedWindowLimiter counts attempts per key and refuses them once max is
// reached until the window for that key ends. A non-positive max disables it.
type fixedWindowLimiter struct {
	mu       sync.Mutex
	win      time.Duration
	max      int
	windows  map[string]*window
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newFixedWindowLimiter(maxAttempts int, win time.Duration) *fixedWindowLimiter {
	l := &fixedWindowLimiter{ //nolint:exhaustruct
		win:     win,
		max:     maxAttempts,
		windows: make(map[string]*window),
		stopCh:  make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

func (l *fixedWindowLimiter) Allow(key string) (bool, time.Duration) {
	if l.max <= 0 {
		return true, 0
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil || !now.Before(w.resetAt) {
		w = &window{count: 0, resetAt: now.Add(l.win)}
		l.windows[key] = w
	}

	w.count++
	if w.count <= l.max {
		return true, 0
	}

	return false, w.resetAt.Sub(now)
}

func (l *fixedWindowLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

func (l *fixedWindowLimiter) sweep() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

func (l *fixedWindowLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
