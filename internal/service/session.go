package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"atmcore/internal/metrics"
)

type session struct {
	userID    int64
	expiresAt time.Time
}

// sessionRegistry tracks live sessions so that logout actually revokes a
// token instead of waiting for its expiry. Entries expire after ttl.
type sessionRegistry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		ttl:      ttl,
		sessions: make(map[string]session),
	}
}

func (r *sessionRegistry) add(userID int64) (string, time.Time) {
	id := uuid.NewString()
	expiresAt := time.Now().Add(r.ttl)

	r.mu.Lock()
	r.sessions[id] = session{userID: userID, expiresAt: expiresAt}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	return id, expiresAt
}

// validate reports whether the session is live and owned by userID.
// Expired entries are evicted on the spot.
func (r *sessionRegistry) validate(id string, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	if time.Now().After(s.expiresAt) {
		delete(r.sessions, id)
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
		return false
	}
	return s.userID == userID
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
}

// sweep evicts expired sessions and returns how many were removed.
func (r *sessionRegistry) sweep() int {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.After(s.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}
