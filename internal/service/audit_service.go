package service

import (
	"context"

	"casechat-be/internal/dto"
	"casechat-be/internal/entity"
	"casechat-be/pkg/audit"
)

type IAuditService interface {
	List(ctx context.Context, req *dto.ListAuditRequest) (*dto.ListAuditResponse, error)
}

// auditService reads the ledger for inspection. Every read re-verifies the
// requested window first; a broken chain refuses the read instead of serving
// entries that can no longer be trusted.
type auditService struct {
	ledger *audit.Ledger
}

func NewAuditService(ledger *audit.Ledger) IAuditService {
	return &auditService{
		ledger: ledger,
	}
}

func (s *auditService) List(ctx context.Context, req *dto.ListAuditRequest) (*dto.ListAuditResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	size, err := s.ledger.Size(ctx)
	if err != nil {
		return nil, err
	}

	from := int64(0)
	to := size
	if req.From != nil {
		from = int64(*req.From)
	}
	if req.To != nil {
		to = int64(*req.To)
	}

	if err := s.ledger.VerifyChain(ctx, from, to); err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListRange(ctx, from, to, limit, req.Offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toAuditEntryResponse(entry))
	}
	return &dto.ListAuditResponse{
		Entries:  out,
		Total:    size,
		Verified: true,
	}, nil
}

func toAuditEntryResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		SequenceNo:  uint64(e.SequenceNo),
		Timestamp:   e.Timestamp,
		ActorId:     e.ActorId,
		Action:      e.Action,
		Resource:    e.Resource,
		Details:     e.Details,
		PayloadHash: e.PayloadHash,
		PriorHash:   e.PriorHash,
		EntryHash:   e.EntryHash,
	}
}
