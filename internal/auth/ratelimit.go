package auth

import (
	"sync"
	"time"
)

const (
	rateWindow      = time.Minute
	idleClientAfter = 5 * time.Minute
	sweepEvery      = 5 * time.Minute
)

// window holds the request timestamps of one client inside the sliding
// rate window.
type window struct {
	mu       sync.Mutex
	hits     []time.Time
	lastSeen time.Time
}

// take prunes hits older than the window, then records the request if
// the client is still under limit.
func (w *window) take(now time.Time, limit int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-rateWindow)
	kept := w.hits[:0]
	for _, hit := range w.hits {
		if hit.After(cutoff) {
			kept = append(kept, hit)
		}
	}
	w.hits = kept

	if len(w.hits) >= limit {
		return false
	}
	w.hits = append(w.hits, now)
	w.lastSeen = now
	return true
}

// RateLimiter tracks per-client request rates over a one-minute sliding
// window. Each AuthManager owns its own limiter; there is no shared
// process-wide state.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*window
}

func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether clientID may make another request under
// limitPerMinute, recording the request when it may.
func (rl *RateLimiter) Allow(clientID string, limitPerMinute int) bool {
	rl.mu.Lock()
	w, ok := rl.clients[clientID]
	if !ok {
		w = &window{lastSeen: time.Now()}
		rl.clients[clientID] = w
	}
	rl.mu.Unlock()

	return w.take(time.Now(), limitPerMinute)
}

// sweep drops clients that have been idle long enough that their whole
// window has expired.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idleClientAfter)
	for clientID, w := range rl.clients {
		w.mu.Lock()
		idle := w.lastSeen.Before(cutoff)
		w.mu.Unlock()
		if idle {
			delete(rl.clients, clientID)
		}
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for range ticker.C {
		rl.sweep()
	}
}
