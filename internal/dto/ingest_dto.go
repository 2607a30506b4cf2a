package dto

import "github.com/google/uuid"

// PublishIngestDocumentMessage is the payload queued when a document upload
// completes and the ingestion pipeline should pick it up.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	ActorId    string    `json:"actor_id"`
}
