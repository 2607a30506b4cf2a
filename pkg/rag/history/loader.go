package history

import (
	"casechat-be/pkg/llm"
	"casechat-be/pkg/rag/session"
	"casechat-be/pkg/store"
)

// Loader turns session message history into bounded LLM context.
type Loader struct {
	sessions *session.Manager
	maxTurns int
}

// NewLoader creates a new history loader. maxTurns caps how many prior
// user/assistant exchanges are replayed into the generation context.
func NewLoader(sessions *session.Manager, maxTurns int) *Loader {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Loader{
		sessions: sessions,
		maxTurns: maxTurns,
	}
}

// LoadConversationHistory returns the most recent turns in chronological
// order, bounded to maxTurns exchanges to cap context size.
func (l *Loader) LoadConversationHistory(sessionId string) ([]llm.Message, error) {
	messages, err := l.sessions.Snapshot(sessionId)
	if err != nil {
		return nil, err
	}

	limit := l.maxTurns * 2 // each turn is a user + assistant pair
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	out := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == store.RoleAssistant {
			role = "assistant"
		}
		out = append(out, llm.Message{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out, nil
}
