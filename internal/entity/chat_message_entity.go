package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID
	SessionId string
	ActorId   string
	Role      string
	Content   string
	CreatedAt time.Time
}
