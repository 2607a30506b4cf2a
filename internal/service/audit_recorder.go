package service

import (
	"context"
	"time"

	"casechat-be/internal/pkg/logger"
	"casechat-be/pkg/audit"
	"casechat-be/pkg/events"
	pkgNats "casechat-be/pkg/nats"
)

// AuditRecorder funnels service-layer audit writes into the ledger. A failed
// append is retried in the background; if it still fails, an AUDIT_GAP alert
// is published so operators know an operation completed without coverage.
// The triggering operation itself is never rolled back.
type AuditRecorder struct {
	ledger         *audit.Ledger
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewAuditRecorder(ledger *audit.Ledger, eventPublisher *pkgNats.Publisher, log logger.ILogger) *AuditRecorder {
	return &AuditRecorder{
		ledger:         ledger,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

const (
	auditRetryAttempts = 3
	auditRetryDelay    = 200 * time.Millisecond
)

// Record appends one entry, retrying asynchronously on failure.
func (r *AuditRecorder) Record(ctx context.Context, actorId, action, resource, details, payloadHash string) {
	_, err := r.ledger.Append(ctx, actorId, action, resource, details, payloadHash)
	if err == nil {
		return
	}

	r.logger.Warn("audit", "Audit append failed, retrying in background", map[string]interface{}{
		"action": action,
		"error":  err.Error(),
	})

	go r.retry(actorId, action, resource, details, payloadHash, err)
}

func (r *AuditRecorder) retry(actorId, action, resource, details, payloadHash string, lastErr error) {
	for attempt := 1; attempt <= auditRetryAttempts; attempt++ {
		time.Sleep(auditRetryDelay * time.Duration(attempt))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := r.ledger.Append(ctx, actorId, action, resource, details, payloadHash)
		cancel()
		if err == nil {
			r.logger.Info("audit", "Audit append recovered", map[string]interface{}{
				"action":  action,
				"attempt": attempt,
			})
			return
		}
		lastErr = err
	}

	r.logger.Error("audit", "Audit append abandoned, coverage gap", map[string]interface{}{
		"action": action,
		"actor":  actorId,
		"error":  lastErr.Error(),
	})

	if r.eventPublisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		evt := events.NewAuditGapEvent(action, actorId, lastErr.Error())
		if err := r.eventPublisher.Publish(ctx, evt); err != nil {
			r.logger.Error("audit", "Failed to publish audit gap alert", map[string]interface{}{"error": err.Error()})
		}
	}
}
