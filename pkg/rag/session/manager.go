package session

import (
	"context"
	"errors"
	"time"

	"casechat-be/internal/repository/memory"
	"casechat-be/pkg/store"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for operations against an unknown or
// already-evicted session id. Callers should recreate via GetOrCreate.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the session lifecycle: creation, turn appends, scope changes
// and idle eviction.
type Manager struct {
	sessionRepo   *memory.SessionRepository
	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

// NewManager creates a new session manager
func NewManager(sessionRepo *memory.SessionRepository, idleTTL, sweepInterval time.Duration) *Manager {
	return &Manager{
		sessionRepo:   sessionRepo,
		idleTTL:       idleTTL,
		sweepInterval: sweepInterval,
		now:           time.Now,
	}
}

// GetOrCreate returns the session for the given id, or creates a fresh one
// with a newly generated token when the id is empty or unknown. The second
// return reports whether a new session was created; the caller must hand the
// new id back to the client.
func (m *Manager) GetOrCreate(sessionId string, actorId string) (*store.Session, bool) {
	if sessionId != "" {
		if session, found := m.sessionRepo.Get(sessionId); found {
			session.Lock()
			session.LastActiveAt = m.now()
			session.Version++
			session.Unlock()
			return session, false
		}
	}

	now := m.now()
	session := &store.Session{
		Id:           uuid.NewString(),
		ActorId:      actorId,
		CreatedAt:    now,
		LastActiveAt: now,
		Messages:     []store.Message{},
	}
	m.sessionRepo.Save(session)
	return session, true
}

// SetScope changes the session's active document scope. A nil documentId
// clears the scope back to all documents.
func (m *Manager) SetScope(sessionId string, documentId *uuid.UUID) error {
	session, found := m.sessionRepo.Get(sessionId)
	if !found {
		return ErrSessionNotFound
	}
	session.Lock()
	session.Scope = documentId
	session.Version++
	session.Unlock()
	return nil
}

// AppendTurn appends the user message and the assistant reply as one atomic
// unit, so concurrent turns on the same session can never interleave an
// answer between another turn's question and answer.
func (m *Manager) AppendTurn(sessionId string, user, assistant store.Message) error {
	session, found := m.sessionRepo.Get(sessionId)
	if !found {
		return ErrSessionNotFound
	}
	session.Lock()
	session.Messages = append(session.Messages, user, assistant)
	session.LastActiveAt = m.now()
	session.Version++
	session.Unlock()
	return nil
}

// EvictIdle removes sessions idle past the TTL and returns how many were
// evicted. A session whose version changed between the idle check and the
// delete is skipped; it will be reconsidered on the next sweep.
func (m *Manager) EvictIdle(now time.Time, ttl time.Duration) int {
	evicted := 0
	for _, session := range m.sessionRepo.Items() {
		session.Lock()
		idle := now.Sub(session.LastActiveAt) > ttl
		version := session.Version
		session.Unlock()

		if !idle {
			continue
		}

		session.Lock()
		if session.Version == version && now.Sub(session.LastActiveAt) > ttl {
			m.sessionRepo.Delete(session.Id)
			evicted++
		}
		session.Unlock()
	}
	return evicted
}

// StartSweeper runs the periodic idle eviction until the context is done.
func (m *Manager) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(m.now(), m.idleTTL)
		}
	}
}

// Snapshot returns a copy of the session's message history in append order.
func (m *Manager) Snapshot(sessionId string) ([]store.Message, error) {
	session, found := m.sessionRepo.Get(sessionId)
	if !found {
		return nil, ErrSessionNotFound
	}
	session.Lock()
	defer session.Unlock()
	messages := make([]store.Message, len(session.Messages))
	copy(messages, session.Messages)
	return messages, nil
}
