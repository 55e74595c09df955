package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded reports that a newer sequence took over the key while the
// caller was waiting or fetching. It is a silent-discard condition, not a
// failure to surface to the user.
var ErrSuperseded = errors.New("debounce: superseded by newer request")

// Gate coalesces search-as-you-type traffic. Each keystroke registers a
// monotonically increasing sequence for its key (one key per input field or
// session); the call then waits out the debounce window and proceeds only if
// no newer sequence arrived meanwhile. After the upstream fetch resolves,
// StillCurrent gives the last-write-wins check: a response for a superseded
// sequence must be discarded, never applied.
type Gate struct {
	window time.Duration

	mu     sync.Mutex
	latest map[string]uint64
}

// NewGate builds a gate with the provided debounce window.
func NewGate(window time.Duration) *Gate {
	return &Gate{
		window: window,
		latest: make(map[string]uint64),
	}
}

// Register records seq as a candidate for key and reports whether it became
// the newest sequence. Older sequences never displace newer ones.
func (g *Gate) Register(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.latest[key]; ok && current >= seq {
		return current == seq
	}
	g.latest[key] = seq
	return true
}

// Wait registers seq, sleeps through the debounce window and returns nil
// only if seq is still the newest sequence for key. Cancelling ctx aborts
// the wait.
func (g *Gate) Wait(ctx context.Context, key string, seq uint64) error {
	if !g.Register(key, seq) {
		return ErrSuperseded
	}
	if g.window > 0 {
		timer := time.NewTimer(g.window)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if !g.StillCurrent(key, seq) {
		return ErrSuperseded
	}
	return nil
}

// StillCurrent reports whether seq remains the newest sequence for key.
func (g *Gate) StillCurrent(key string, seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest[key] == seq
}

// Forget drops the tracking state of a key, typically when the owning
// session ends.
func (g *Gate) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.latest, key)
}

// Cooldown suppresses repeat events for a key inside a fixed window. The
// first event passes and opens the window; duplicates within it are dropped.
// Used for barcode scans, where the camera decodes the same code many times
// per second.
type Cooldown struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown builds a cooldown tracker with the provided window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Allow reports whether the event for key is outside the cooldown window,
// recording it when allowed.
func (c *Cooldown) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.last[key] = now
	return true
}

// Reset clears the window for a key so the next event passes immediately.
func (c *Cooldown) Reset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, key)
}
