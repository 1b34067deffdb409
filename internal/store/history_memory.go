package store

import (
	"context"
	"sync"

	"github.com/GregMSThompson/explorer-guide/internal/models"
)

type sessionKey struct {
	uid       string
	sessionID string
}

type memorySession struct {
	mu   sync.Mutex
	msgs []models.Message
}

// memoryHistory keeps every session in process memory. Appends to one session
// are serialized; different sessions do not contend.
type memoryHistory struct {
	mu       sync.Mutex
	sessions map[sessionKey]*memorySession
}

func NewMemoryHistory() *memoryHistory {
	return &memoryHistory{sessions: make(map[sessionKey]*memorySession)}
}

func (s *memoryHistory) session(uid, sessionID string, create bool) *memorySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{uid: uid, sessionID: sessionID}
	sess, ok := s.sessions[key]
	if !ok && create {
		sess = &memorySession{}
		s.sessions[key] = sess
	}
	return sess
}

func (s *memoryHistory) Get(ctx context.Context, uid, sessionID string) ([]models.Message, error) {
	sess := s.session(uid, sessionID, false)
	if sess == nil {
		return []models.Message{}, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]models.Message, len(sess.msgs))
	copy(out, sess.msgs)
	return out, nil
}

func (s *memoryHistory) Append(ctx context.Context, uid, sessionID string, human, assistant models.Message) error {
	sess := s.session(uid, sessionID, true)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.msgs = append(sess.msgs, human, assistant)
	return nil
}

func (s *memoryHistory) Close() error { return nil }
