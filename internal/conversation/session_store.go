package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/drivelane/showroom-ai/internal/leads"
)

// QualificationState is where a session sits in the lead lifecycle. The only
// transitions are Unqualified to Qualified and Qualified to Notified;
// Notified is terminal for the session's lifetime.
type QualificationState string

const (
	StateUnqualified QualificationState = "unqualified"
	StateQualified   QualificationState = "qualified"
	StateNotified    QualificationState = "notified"
)

// SessionState is everything the engine needs about an ongoing conversation.
type SessionState struct {
	ID        string             `json:"id"`
	History   []leads.Turn       `json:"history"`
	Fields    leads.FieldSet     `json:"fields"`
	State     QualificationState `json:"state"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SessionStore persists session state between turns. Load returns a fresh
// state, never an error, for an unknown session id.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*SessionState, error)
	Save(ctx context.Context, state *SessionState) error
}

func newSessionState(id string) *SessionState {
	return &SessionState{ID: id, State: StateUnqualified}
}

// MemorySessionStore keeps sessions in process memory. Suitable for the CLI
// and for tests; the API server uses the Redis store so sessions survive
// restarts.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*SessionState)}
}

var _ SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return newSessionState(sessionID), nil
	}
	cp := *st
	cp.History = append([]leads.Turn(nil), st.History...)
	return &cp, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, state *SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *state
	cp.History = append([]leads.Turn(nil), state.History...)
	cp.UpdatedAt = time.Now().UTC()
	s.sessions[state.ID] = &cp
	return nil
}
