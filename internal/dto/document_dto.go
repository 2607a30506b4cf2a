package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDocumentRequest struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type"`

	// StorageKey may be empty; the registry then derives one from the
	// assigned document id.
	StorageKey string `json:"storage_key"`
}

type DocumentResponse struct {
	Id            uuid.UUID `json:"id"`
	StorageKey    string    `json:"-"`
	Name          string    `json:"name"`
	ContentType   string    `json:"content_type,omitempty"`
	Status        string    `json:"status"`
	RiskLevel     string    `json:"risk_level,omitempty"`
	RiskFlags     []string  `json:"risk_flags,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListDocumentsRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int64              `json:"total"`
}
