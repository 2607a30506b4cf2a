package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id            uuid.UUID
	Name          string
	ContentType   string
	StorageKey    string
	Status        string // "pending" | "indexed" | "failed"
	RiskLevel     string // "low" | "medium" | "high", set when indexed
	RiskFlags     []string
	FailureReason *string
	UploadedAt    time.Time
	UpdatedAt     *time.Time
}
