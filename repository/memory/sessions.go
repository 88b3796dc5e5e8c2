package memory

import (
	"context"
	"sync"
	"time"

	"casino/games"
)

// SessionStore is an in-memory blackjack session store, one session per
// user.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*games.BlackjackSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*games.BlackjackSession)}
}

func cloneSession(s *games.BlackjackSession) *games.BlackjackSession {
	c := *s
	if s.Deck != nil {
		c.Deck = &games.Deck{Cards: append([]games.Card(nil), s.Deck.Cards...)}
	}
	c.Player = append([]games.Card(nil), s.Player...)
	c.Dealer = append([]games.Card(nil), s.Dealer...)
	return &c
}

func (s *SessionStore) Get(ctx context.Context, userID int64) (*games.BlackjackSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (s *SessionStore) Save(ctx context.Context, session *games.BlackjackSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// ListIdle returns sessions whose last action predates the cutoff.
func (s *SessionStore) ListIdle(ctx context.Context, before time.Time) ([]*games.BlackjackSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*games.BlackjackSession
	for _, session := range s.sessions {
		if session.LastActionAt.Before(before) {
			out = append(out, cloneSession(session))
		}
	}
	return out, nil
}
