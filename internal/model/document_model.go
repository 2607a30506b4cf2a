package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string         `gorm:"type:varchar(255);not null"`
	ContentType   string         `gorm:"type:varchar(100)"`
	StorageKey    string         `gorm:"type:varchar(512);not null"`
	Status        string         `gorm:"type:varchar(20);not null;index"`
	RiskLevel     string         `gorm:"type:varchar(10)"`
	RiskFlags     datatypes.JSON `gorm:"type:jsonb"`
	FailureReason *string        `gorm:"type:text"`
	UploadedAt    time.Time      `gorm:"not null;index"`
	UpdatedAt     *time.Time
}

func (Document) TableName() string {
	return "documents"
}
