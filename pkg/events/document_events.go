package events

import "time"

const (
	EventDocumentUploaded = "DOCUMENT_UPLOADED"
	EventDocumentIndexed  = "DOCUMENT_INDEXED"
	EventDocumentFailed   = "DOCUMENT_FAILED"
	EventAuditGap         = "AUDIT_GAP"
)

func NewDocumentUploadedEvent(documentId, name, actorId string) Event {
	return BaseEvent{
		Type: EventDocumentUploaded,
		Data: map[string]interface{}{
			"document_id": documentId,
			"name":        name,
			"actor_id":    actorId,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentIndexedEvent(documentId, riskLevel string, chunkCount int) Event {
	return BaseEvent{
		Type: EventDocumentIndexed,
		Data: map[string]interface{}{
			"document_id": documentId,
			"risk_level":  riskLevel,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

func NewDocumentFailedEvent(documentId, reason string) Event {
	return BaseEvent{
		Type: EventDocumentFailed,
		Data: map[string]interface{}{
			"document_id": documentId,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewAuditGapEvent signals that an audit entry could not be committed after
// retries and the corresponding operation completed without coverage.
func NewAuditGapEvent(action, actorId, cause string) Event {
	return BaseEvent{
		Type: EventAuditGap,
		Data: map[string]interface{}{
			"action":   action,
			"actor_id": actorId,
			"cause":    cause,
		},
		OccurredAt: time.Now(),
	}
}
