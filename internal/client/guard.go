package client

import "sync"

// guard admits one mutation per key at a time.
type guard struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newGuard() *guard {
	return &guard{busy: make(map[string]bool)}
}

// acquire marks key busy and returns its release func, or ErrInFlight.
func (g *guard) acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[key] {
		return nil, ErrInFlight
	}
	g.busy[key] = true
	return func() {
		g.mu.Lock()
		delete(g.busy, key)
		g.mu.Unlock()
	}, nil
}
