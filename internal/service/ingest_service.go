package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casechat-be/internal/dto"
	"casechat-be/internal/model"
	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/repository/specification"
	"casechat-be/internal/repository/unitofwork"
	"casechat-be/pkg/embedding"
	"casechat-be/pkg/events"
	pkgNats "casechat-be/pkg/nats"
	"casechat-be/pkg/risk"
	"casechat-be/pkg/storage"
	"casechat-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIngestService interface {
	Consume(ctx context.Context) error
}

// ingestService processes uploaded documents: read bytes, risk scan, chunk,
// embed, index. Terminal status is reported through the document service so
// the monotone transition rules stay in one place.
type ingestService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	documentService   IDocumentService
	storageProvider   storage.Provider
	embeddingProvider embedding.EmbeddingProvider
	riskAnalyzer      *risk.Analyzer
	eventPublisher    *pkgNats.Publisher
	logger            logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	documentService IDocumentService,
	storageProvider storage.Provider,
	embeddingProvider embedding.EmbeddingProvider,
	riskAnalyzer *risk.Analyzer,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IIngestService {
	return &ingestService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		documentService:   documentService,
		storageProvider:   storageProvider,
		embeddingProvider: embeddingProvider,
		riskAnalyzer:      riskAnalyzer,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (s *ingestService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ingest", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages would retry forever
		return
	}

	if err := s.ingest(ctx, payload.DocumentId); err != nil {
		s.logger.Error("ingest", "Document ingestion failed", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
			"error":       err.Error(),
		})
		if failErr := s.documentService.MarkFailed(ctx, payload.DocumentId, err.Error()); failErr != nil {
			s.logger.Error("ingest", "Failed to mark document failed", map[string]interface{}{"error": failErr.Error()})
		}
		s.publishEvent(ctx, events.NewDocumentFailedEvent(payload.DocumentId.String(), err.Error()))
	}
	// Ack either way: terminal status is recorded on the document itself,
	// replaying the message cannot un-fail it.
	msg.Ack()
}

func (s *ingestService) ingest(ctx context.Context, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", documentId)
	}

	raw, err := s.storageProvider.Read(ctx, doc.StorageKey)
	if err != nil {
		return fmt.Errorf("read object %s: %w", doc.StorageKey, err)
	}
	text := string(raw)
	if len(text) == 0 {
		return fmt.Errorf("document %s is empty", documentId)
	}

	assessment := s.riskAnalyzer.Scan(ctx, text)

	chunks := utils.SplitText(text, utils.DefaultChunkSize, utils.DefaultChunkOverlap)
	s.logger.Info("ingest", "Document split", map[string]interface{}{
		"document_id": documentId.String(),
		"chunks":      len(chunks),
	})

	newEmbeddings := make([]*model.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		newEmbeddings = append(newEmbeddings, &model.DocumentEmbedding{
			Id:             uuid.New(),
			DocumentId:     doc.Id,
			ChunkIndex:     i,
			Chunk:          chunk,
			EmbeddingValue: embedding.ToVector(res.Embedding.Values),
			SourceLocator:  fmt.Sprintf("%s#chunk-%d", doc.Name, i),
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin index transaction: %w", err)
	}
	defer uow.Rollback()

	// Re-ingest replaces the previous chunks wholesale.
	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return fmt.Errorf("delete stale embeddings: %w", err)
	}
	if err := uow.DocumentEmbeddingRepository().CreateBatch(ctx, newEmbeddings); err != nil {
		return fmt.Errorf("store embeddings: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit index transaction: %w", err)
	}

	if err := s.documentService.MarkIndexed(ctx, doc.Id, assessment.Level, assessment.Flags); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}

	s.publishEvent(ctx, events.NewDocumentIndexedEvent(doc.Id.String(), assessment.Level, len(chunks)))

	s.logger.Info("ingest", "Document indexed", map[string]interface{}{
		"document_id": doc.Id.String(),
		"risk_level":  assessment.Level,
		"chunks":      len(chunks),
	})
	return nil
}

func (s *ingestService) publishEvent(ctx context.Context, evt events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ingest", "Failed to publish event", map[string]interface{}{
			"event": evt.EventType(),
			"error": err.Error(),
		})
	}
}
