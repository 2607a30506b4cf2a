package model

import "time"

// AuditEntry rows are append-only. SequenceNo is assigned by the ledger's
// serialization point, never by the database.
type AuditEntry struct {
	SequenceNo  int64     `gorm:"primaryKey;autoIncrement:false"`
	Timestamp   time.Time `gorm:"not null;index"`
	ActorId     string    `gorm:"type:varchar(255);not null"`
	Action      string    `gorm:"type:varchar(50);not null;index"`
	Resource    string    `gorm:"type:varchar(255);not null"`
	Details     string    `gorm:"type:text"`
	PayloadHash string    `gorm:"type:char(64);not null"`
	PriorHash   string    `gorm:"type:char(64);not null"`
	EntryHash   string    `gorm:"type:char(64);not null;uniqueIndex"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
