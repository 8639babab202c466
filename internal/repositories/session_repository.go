package repositories

import (
	"sync"
	"time"

	"traintrack/internal/domain"
	"traintrack/internal/domain/models"
)

// SessionRepository maps issued tokens to user ids.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (r *SessionRepository) Add(s models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
}

// Resolve returns the user id bound to token. Expired sessions are dropped.
func (r *SessionRepository) Resolve(token string) (string, error) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return "", domain.UnauthorizedError{Msg: "session not found"}
	}
	if s.Expired(r.now()) {
		r.Remove(token)
		return "", domain.UnauthorizedError{Msg: "session expired"}
	}
	return s.UserID, nil
}

// Remove revokes token. It reports whether a session existed.
func (r *SessionRepository) Remove(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[token]
	delete(r.sessions, token)
	return ok
}

// Prune drops every expired session and returns how many were removed.
func (r *SessionRepository) Prune() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n
}
