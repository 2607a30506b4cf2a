package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Passage is one retrieved chunk of an indexed document, produced per query.
// Not persisted; citations snapshot it.
type Passage struct {
	DocumentId    uuid.UUID `json:"document_id"`
	Text          string    `json:"text"`
	Score         float64   `json:"score"`
	SourceLocator string    `json:"source_locator"`
}

// Citation binds one passage to a stable 1-based ordinal within a single answer.
type Citation struct {
	Ordinal int     `json:"ordinal"`
	Passage Passage `json:"passage"`
}

// Message is one conversational turn. Immutable once appended to a session.
type Message struct {
	Role      string     `json:"role"` // "user" | "assistant"
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Session is the active conversational state held in memory, keyed by an
// opaque client-held token. The token is an identity, not a credential.
type Session struct {
	Id           string     `json:"id"`
	ActorId      string     `json:"actor_id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	Scope        *uuid.UUID `json:"scope,omitempty"` // optional single-document retrieval scope
	Messages     []Message  `json:"messages"`

	// Version is bumped on every mutation so the eviction sweep can detect
	// an append that raced with it and back off.
	Version uint64 `json:"-"`

	mu sync.Mutex
}

// Lock serializes the read-modify-append critical section for this session.
// Callers must keep the section short; retrieval and generation run outside it.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session critical section.
func (s *Session) Unlock() { s.mu.Unlock() }

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
