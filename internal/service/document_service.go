package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casechat-be/internal/constant"
	"casechat-be/internal/dto"
	"casechat-be/internal/entity"
	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/repository/specification"
	"casechat-be/internal/repository/unitofwork"
	pkgNats "casechat-be/pkg/nats"

	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when the referenced document does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// ErrInvalidTransition is returned when a status change would leave the
// monotone pending -> indexed|failed lifecycle. The stored status is left
// untouched.
var ErrInvalidTransition = errors.New("invalid document status transition")

type IDocumentService interface {
	Register(ctx context.Context, actorId string, req *dto.RegisterDocumentRequest) (*dto.DocumentResponse, error)
	MarkIndexed(ctx context.Context, id uuid.UUID, riskLevel string, riskFlags []string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	auditRecorder  *AuditRecorder
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	auditRec *AuditRecorder,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		auditRecorder:  auditRec,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *documentService) Register(ctx context.Context, actorId string, req *dto.RegisterDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc := entity.Document{
		Id:          uuid.New(),
		Name:        req.Name,
		ContentType: req.ContentType,
		StorageKey:  req.StorageKey,
		Status:      constant.DocumentStatusPending,
		UploadedAt:  time.Now(),
	}
	if doc.StorageKey == "" {
		doc.StorageKey = fmt.Sprintf("docs/%s/%s", doc.Id, doc.Name)
	}
	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	s.auditRecorder.Record(ctx, actorId,
		constant.AuditActionDocumentRegister,
		constant.AuditResourceDocumentRepo,
		doc.Name, "")

	s.logger.Info("documents", "Document registered", map[string]interface{}{
		"document_id": doc.Id.String(),
		"name":        doc.Name,
	})

	return toDocumentResponse(&doc), nil
}

// MarkIndexed moves a pending document to indexed and attaches the risk
// assessment produced during ingestion.
func (s *documentService) MarkIndexed(ctx context.Context, id uuid.UUID, riskLevel string, riskFlags []string) error {
	return s.transition(ctx, id, constant.DocumentStatusIndexed, func(doc *entity.Document) {
		doc.RiskLevel = riskLevel
		doc.RiskFlags = riskFlags
	})
}

// MarkFailed moves a pending document to failed with a diagnostic reason.
func (s *documentService) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return s.transition(ctx, id, constant.DocumentStatusFailed, func(doc *entity.Document) {
		doc.FailureReason = &reason
	})
}

func (s *documentService) transition(ctx context.Context, id uuid.UUID, target string, apply func(*entity.Document)) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}

	if doc.Status != constant.DocumentStatusPending {
		s.logger.Warn("documents", "Rejected status transition", map[string]interface{}{
			"document_id": id.String(),
			"from":        doc.Status,
			"to":          target,
		})
		return ErrInvalidTransition
	}

	doc.Status = target
	now := time.Now()
	doc.UpdatedAt = &now
	apply(doc)

	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return fmt.Errorf("update document %s: %w", id, err)
	}

	action := constant.AuditActionDocumentIndexed
	if target == constant.DocumentStatusFailed {
		action = constant.AuditActionDocumentFailed
	}
	s.auditRecorder.Record(ctx, "system", action, constant.AuditResourceDocumentRepo, doc.Name, "")

	return nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return toDocumentResponse(doc), nil
}

func (s *documentService) List(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	filters := []specification.Specification{}
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}

	total, err := uow.DocumentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "uploaded_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *toDocumentResponse(doc))
	}
	return &dto.ListDocumentsResponse{Documents: out, Total: total}, nil
}

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	res := &dto.DocumentResponse{
		Id:          doc.Id,
		StorageKey:  doc.StorageKey,
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Status:      doc.Status,
		RiskLevel:   doc.RiskLevel,
		RiskFlags:   doc.RiskFlags,
		CreatedAt:   doc.UploadedAt,
	}
	if doc.FailureReason != nil {
		res.FailureReason = *doc.FailureReason
	}
	if doc.UpdatedAt != nil {
		res.UpdatedAt = *doc.UpdatedAt
	} else {
		res.UpdatedAt = doc.UploadedAt
	}
	return res
}
