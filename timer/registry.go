package timer

import "sync"

// Registry hands out one Session per user. It replaces the process-wide
// progress map of earlier iterations so concurrent sessions (tests,
// multi-tab) never share attempt state.
type Registry struct {
	mu       sync.Mutex
	clock    Clock
	settler  Settler
	sessions map[uint]*Session
}

func NewRegistry(settler Settler, clock Clock) *Registry {
	if clock == nil {
		clock = systemClock{}
	}
	return &Registry{
		clock:    clock,
		settler:  settler,
		sessions: make(map[uint]*Session),
	}
}

// Session returns the user's session, creating it on first use.
func (r *Registry) Session(userID uint) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = NewSession(userID, r.settler, r.clock)
		r.sessions[userID] = s
	}
	return s
}

// Drop discards a user's session and all in-memory attempts, e.g. on logout.
func (r *Registry) Drop(userID uint) {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
}
