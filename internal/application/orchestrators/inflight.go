package orchestrators

import "sync"

// InFlightGuard allows one outstanding operation per key.
type InFlightGuard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewInFlightGuard creates an empty guard.
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{busy: make(map[string]struct{})}
}

// TryAcquire claims key. It returns ok=false when key is already held.
// The returned release must be called exactly once when ok is true.
func (g *InFlightGuard) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.busy[key]; held {
		return nil, false
	}
	g.busy[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}
