package http

import (
	"sync"
	"time"
)

const (
	rateWindow      = time.Minute
	staleClientAge  = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
	defaultRPM      = 60
)

// rateLimiter counts requests per client in fixed one-minute windows. A
// window opens with the client's first request and is not extended by
// later ones.
type rateLimiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	done     chan struct{}
	stopOnce sync.Once
}

type window struct {
	opened time.Time
	seen   time.Time
	count  int
}

func newRateLimiter(limit int) *rateLimiter {
	if limit < 1 {
		limit = defaultRPM
	}
	rl := &rateLimiter{
		limit:   limit,
		now:     time.Now,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.sweepEvery(cleanupInterval)
	return rl
}

func (rl *rateLimiter) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-t.C:
			rl.sweep()
		}
	}
}

// sweep forgets clients idle for staleClientAge and returns how many.
func (rl *rateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleClientAge)
	before := len(rl.windows)
	for ip, w := range rl.windows {
		if w.seen.Before(cutoff) {
			delete(rl.windows, ip)
		}
	}
	return before - len(rl.windows)
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *rateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// allow counts one request from ip. When the window is used up it returns
// false with the time left until the window closes.
func (rl *rateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[ip]
	if !ok || now.Sub(w.opened) >= rateWindow {
		w = &window{opened: now}
		rl.windows[ip] = w
	}
	w.seen = now
	w.count++
	if w.count > rl.limit {
		return false, w.opened.Add(rateWindow).Sub(now)
	}
	return true, 0
}
