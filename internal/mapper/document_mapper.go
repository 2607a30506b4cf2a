package mapper

import (
	"encoding/json"

	"casechat-be/internal/entity"
	"casechat-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var flags []string
	if len(d.RiskFlags) > 0 {
		// Malformed rows degrade to no flags rather than failing the read
		_ = json.Unmarshal(d.RiskFlags, &flags)
	}

	return &entity.Document{
		Id:            d.Id,
		Name:          d.Name,
		ContentType:   d.ContentType,
		StorageKey:    d.StorageKey,
		Status:        d.Status,
		RiskLevel:     d.RiskLevel,
		RiskFlags:     flags,
		FailureReason: d.FailureReason,
		UploadedAt:    d.UploadedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var flags datatypes.JSON
	if d.RiskFlags != nil {
		if raw, err := json.Marshal(d.RiskFlags); err == nil {
			flags = raw
		}
	}

	return &model.Document{
		Id:            d.Id,
		Name:          d.Name,
		ContentType:   d.ContentType,
		StorageKey:    d.StorageKey,
		Status:        d.Status,
		RiskLevel:     d.RiskLevel,
		RiskFlags:     flags,
		FailureReason: d.FailureReason,
		UploadedAt:    d.UploadedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
