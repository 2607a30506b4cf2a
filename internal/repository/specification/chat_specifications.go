package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters chat messages by their session token
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByDocumentID filters by document reference
type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// ByStatus filters documents by processing status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// BySequenceRange filters audit entries by [From, To) sequence numbers
type BySequenceRange struct {
	From int64
	To   int64
}

func (s BySequenceRange) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sequence_no >= ? AND sequence_no < ?", s.From, s.To)
}
