package search

import (
	"context"
	"errors"
	"fmt"

	"casechat-be/internal/constant"
	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/repository/specification"
	"casechat-be/internal/repository/unitofwork"
	"casechat-be/pkg/embedding"
	"casechat-be/pkg/store"

	"github.com/google/uuid"
)

var (
	// ErrScopeNotReady means the query was scoped to a document that is not
	// (or not yet) indexed. Distinct from "no results" so the caller can say
	// "still processing" instead of "no answer".
	ErrScopeNotReady = errors.New("document scope not ready")

	// ErrRetrievalUnavailable wraps backend failures of the vector index so
	// the caller can retry or degrade instead of failing the request.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)

// Orchestrator is the retrieval gateway: embeds the query and runs vector
// search against indexed document chunks.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, log logger.ILogger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

// Config encapsulates search parameters
type Config struct {
	TopK int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK: 5,
	}
}

// Search returns up to TopK passages ordered by relevance descending.
// An empty result is a legitimate success meaning "no grounding found".
func (o *Orchestrator) Search(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	query string,
	scope *uuid.UUID,
	config Config,
) ([]store.Passage, error) {

	if scope != nil {
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: *scope})
		if err != nil {
			return nil, fmt.Errorf("resolve scope %s: %w", scope, ErrRetrievalUnavailable)
		}
		if doc == nil || doc.Status != constant.DocumentStatusIndexed {
			return nil, ErrScopeNotReady
		}
	}

	embeddingRes, err := o.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		o.logger.Error("search", "Embedding generation failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("embedding generation failed: %v: %w", err, ErrRetrievalUnavailable)
	}

	scoredResults, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.TopK,
		scope,
	)
	if err != nil {
		o.logger.Error("search", "Vector search failed", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("vector search failed: %v: %w", err, ErrRetrievalUnavailable)
	}

	o.logger.Debug("search", "Raw search results", map[string]interface{}{"count": len(scoredResults)})

	passages := make([]store.Passage, 0, len(scoredResults))
	for _, res := range scoredResults {
		passages = append(passages, store.Passage{
			DocumentId:    res.Embedding.DocumentId,
			Text:          res.Embedding.Chunk,
			Score:         clampScore(res.Similarity),
			SourceLocator: res.Embedding.SourceLocator,
		})
	}
	return passages, nil
}

// clampScore keeps similarity within [0,1]; float drift in the database
// computation can nudge it slightly outside.
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
