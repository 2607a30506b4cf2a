package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"casechat-be/internal/dto"
	"casechat-be/internal/pkg/logger"
	"casechat-be/pkg/events"
	pkgNats "casechat-be/pkg/nats"
	"casechat-be/pkg/storage"

	"github.com/google/uuid"
)

type IUploadService interface {
	IssueUploadURL(ctx context.Context, actorId string, req *dto.IssueUploadURLRequest) (*dto.IssueUploadURLResponse, error)
	StoreObject(ctx context.Context, actorId, key string, data []byte) error
}

// uploadService runs the two-step upload flow: issue a ticket bound to a
// freshly registered pending document, then accept the bytes and hand the
// document to the ingestion pipeline.
type uploadService struct {
	documentService  IDocumentService
	storageProvider  storage.Provider
	publisherService IPublisherService
	eventPublisher   *pkgNats.Publisher
	logger           logger.ILogger
}

func NewUploadService(
	documentService IDocumentService,
	storageProvider storage.Provider,
	publisherService IPublisherService,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IUploadService {
	return &uploadService{
		documentService:  documentService,
		storageProvider:  storageProvider,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *uploadService) IssueUploadURL(ctx context.Context, actorId string, req *dto.IssueUploadURLRequest) (*dto.IssueUploadURLResponse, error) {
	fileName := path.Base(req.FileName)

	// The registry derives a key carrying the document id, so the PUT
	// handler can route the bytes back to the registered document.
	doc, err := s.documentService.Register(ctx, actorId, &dto.RegisterDocumentRequest{
		Name:        fileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, err
	}

	ticket, err := s.storageProvider.IssueUploadURL(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("issue upload url: %w", err)
	}

	return &dto.IssueUploadURLResponse{
		DocumentId: doc.Id,
		UploadURL:  ticket.UploadURL,
		Key:        ticket.Key,
		ExpiresIn:  ticket.ExpiresIn,
	}, nil
}

// StoreObject accepts the uploaded bytes and queues ingestion.
func (s *uploadService) StoreObject(ctx context.Context, actorId, key string, data []byte) error {
	documentId, err := documentIdFromKey(key)
	if err != nil {
		return err
	}

	if err := s.storageProvider.Write(ctx, key, data); err != nil {
		return fmt.Errorf("store object %s: %w", key, err)
	}

	msgPayload := dto.PublishIngestDocumentMessage{
		DocumentId: documentId,
		ActorId:    actorId,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return fmt.Errorf("queue ingestion for %s: %w", documentId, err)
	}

	if s.eventPublisher != nil {
		evt := events.NewDocumentUploadedEvent(documentId.String(), path.Base(key), actorId)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("upload", "Failed to publish upload event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("upload", "Object stored, ingestion queued", map[string]interface{}{
		"document_id": documentId.String(),
		"key":         key,
		"bytes":       len(data),
	})
	return nil
}

func documentIdFromKey(key string) (uuid.UUID, error) {
	parts := strings.Split(key, "/")
	if len(parts) < 3 || parts[0] != "docs" {
		return uuid.Nil, fmt.Errorf("malformed object key %q", key)
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed document id in key %q", key)
	}
	return id, nil
}
