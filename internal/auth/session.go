package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const CookieName = "finance_session"

const sweepInterval = time.Minute

type Session struct {
	ID        string
	UserID    string
	Flashes   []string
	ExpiresAt time.Time
}

// SessionStore keeps login sessions in memory. Sessions die with the process.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionStore) Create(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
	}
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[session.ID] = session
	return copySession(session)
}

func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	return copySession(session), true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) AddFlash(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.live(id); ok {
		session.Flashes = append(session.Flashes, message)
	}
}

// PopFlashes returns and clears the pending flash messages of a session.
func (s *SessionStore) PopFlashes(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.live(id)
	if !ok {
		return nil
	}
	flashes := session.Flashes
	session.Flashes = nil
	return flashes
}

// Sweep drops expired sessions and reports how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *SessionStore) live(id string) (*Session, bool) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.lastSweep = now
	return removed
}

func copySession(session *Session) Session {
	out := *session
	out.Flashes = append([]string(nil), session.Flashes...)
	return out
}
