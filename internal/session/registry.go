package session

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is a concurrency-safe directory of live sessions keyed by id.
// It is a lookup index, not a store of truth: it owns the mapping entries
// and nothing else about a session's state. Construct one per process and
// inject it into the request handlers.
type Registry struct {
	logger   *zap.Logger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:   logger.Named("session.registry"),
		sessions: make(map[string]*Session),
	}
}

// Register inserts the session under its id. An existing entry under the
// same id is replaced; callers generate collision-free ids.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID()]; exists {
		r.logger.Warn("replacing existing session", zap.String("id", s.ID()))
	}
	r.sessions[s.ID()] = s
}

// Get returns the live session registered under id. The second return is
// false when the id is absent or already removed; removal races are
// expected and are not an error.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Remove deletes the entry if present. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// ListActiveIDs returns a snapshot of the currently registered ids. The
// snapshot may be stale by the time it is read; callers must tolerate that.
func (r *Registry) ListActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
