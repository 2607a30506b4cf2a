package mapper

import (
	"casechat-be/internal/entity"
	"casechat-be/internal/model"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) ToEntity(a *model.AuditEntry) *entity.AuditEntry {
	if a == nil {
		return nil
	}
	return &entity.AuditEntry{
		SequenceNo:  a.SequenceNo,
		Timestamp:   a.Timestamp,
		ActorId:     a.ActorId,
		Action:      a.Action,
		Resource:    a.Resource,
		Details:     a.Details,
		PayloadHash: a.PayloadHash,
		PriorHash:   a.PriorHash,
		EntryHash:   a.EntryHash,
	}
}

func (m *AuditMapper) ToModel(a *entity.AuditEntry) *model.AuditEntry {
	if a == nil {
		return nil
	}
	return &model.AuditEntry{
		SequenceNo:  a.SequenceNo,
		Timestamp:   a.Timestamp,
		ActorId:     a.ActorId,
		Action:      a.Action,
		Resource:    a.Resource,
		Details:     a.Details,
		PayloadHash: a.PayloadHash,
		PriorHash:   a.PriorHash,
		EntryHash:   a.EntryHash,
	}
}
