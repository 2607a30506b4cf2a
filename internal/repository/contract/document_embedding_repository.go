package contract

import (
	"context"

	"casechat-be/internal/model"

	"github.com/google/uuid"
)

// ScoredChunk is a vector search hit: the stored chunk plus its cosine similarity.
type ScoredChunk struct {
	Embedding  *model.DocumentEmbedding
	Similarity float64
}

type DocumentEmbeddingRepository interface {
	CreateBatch(ctx context.Context, embeddings []*model.DocumentEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	Count(ctx context.Context) (int64, error)

	// SearchSimilarWithScore returns the top chunks by cosine similarity,
	// descending. A nil documentId searches across all documents.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId *uuid.UUID) ([]*ScoredChunk, error)
}
