package recorder

import "sync"

type gateKey struct {
	sessionID int64
	userID    int64
}

// Gate allows at most one in-flight commit per session per user.
type Gate struct {
	mu       sync.Mutex
	inflight map[gateKey]struct{}
}

// NewGate returns an empty gate.
func NewGate() *Gate {
	return &Gate{inflight: make(map[gateKey]struct{})}
}

// Acquire claims the slot for (sessionID, userID). It fails with
// ErrSubmissionInFlight if the slot is taken; otherwise the returned
// release func must be called once the commit finishes.
func (g *Gate) Acquire(sessionID, userID int64) (release func(), err error) {
	key := gateKey{sessionID: sessionID, userID: userID}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return nil, ErrSubmissionInFlight
	}
	g.inflight[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, key)
			g.mu.Unlock()
		})
	}, nil
}
