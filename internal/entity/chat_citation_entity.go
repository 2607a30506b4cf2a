package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatCitation snapshots one retrieved passage under its ordinal within an
// assistant message. Ordinals are 1-based and stable for the message lifetime.
type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	DocumentId    uuid.UUID
	Ordinal       int
	Snippet       string
	Score         float64
	SourceLocator string
	CreatedAt     time.Time
}
