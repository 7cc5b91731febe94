package amqp

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	}
	return "closed"
}

// breaker stops publishes after threshold consecutive failures. Once
// cooldown has passed since the last failure calls go through again; the
// first failure in that half-open state reopens it.
type breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == breakerOpen && b.now().Sub(b.lastFailure) > b.cooldown {
		b.state = breakerHalfOpen
	}
	return b.state != breakerOpen
}

// failure records a failed call and reports whether it opened the breaker.
func (b *breaker) failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.now()
	if b.state == breakerOpen {
		return false
	}
	if b.failures >= b.threshold || b.state == breakerHalfOpen {
		b.state = breakerOpen
		return true
	}
	return false
}

func (b *breaker) success() {
	b.mu.Lock()
	b.state, b.failures = breakerClosed, 0
	b.mu.Unlock()
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
