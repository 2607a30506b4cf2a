package history

import (
	"fmt"
	"testing"
	"time"

	"casechat-be/internal/repository/memory"
	"casechat-be/pkg/rag/session"
	"casechat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, turns int) (*session.Manager, string) {
	t.Helper()
	manager := session.NewManager(memory.NewSessionRepository(), 30*time.Minute, time.Minute)
	sess, _ := manager.GetOrCreate("", "actor-1")
	for i := 0; i < turns; i++ {
		err := manager.AppendTurn(sess.Id,
			store.Message{Role: store.RoleUser, Content: fmt.Sprintf("q-%d", i)},
			store.Message{Role: store.RoleAssistant, Content: fmt.Sprintf("a-%d", i)},
		)
		require.NoError(t, err)
	}
	return manager, sess.Id
}

func TestLoadConversationHistoryRoles(t *testing.T) {
	manager, sessionId := newTestSession(t, 2)
	loader := NewLoader(manager, 5)

	history, err := loader.LoadConversationHistory(sessionId)
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "q-0", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "a-0", history[1].Content)
	assert.Equal(t, "user", history[2].Role)
	assert.Equal(t, "assistant", history[3].Role)
}

func TestLoadConversationHistoryBounded(t *testing.T) {
	manager, sessionId := newTestSession(t, 8)
	loader := NewLoader(manager, 3)

	history, err := loader.LoadConversationHistory(sessionId)
	require.NoError(t, err)
	require.Len(t, history, 6)

	// only the last 3 exchanges survive, oldest first
	assert.Equal(t, "q-5", history[0].Content)
	assert.Equal(t, "a-7", history[5].Content)
}

func TestLoadConversationHistoryEmptySession(t *testing.T) {
	manager, sessionId := newTestSession(t, 0)
	loader := NewLoader(manager, 5)

	history, err := loader.LoadConversationHistory(sessionId)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLoadConversationHistoryUnknownSession(t *testing.T) {
	manager, _ := newTestSession(t, 0)
	loader := NewLoader(manager, 5)

	_, err := loader.LoadConversationHistory("nope")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestNewLoaderDefaultsMaxTurns(t *testing.T) {
	manager, sessionId := newTestSession(t, 7)
	loader := NewLoader(manager, 0)

	history, err := loader.LoadConversationHistory(sessionId)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}
