package service

import (
	"context"

	"casechat-be/internal/pkg/logger"
	"casechat-be/internal/websocket"
	"casechat-be/pkg/events"
	pkgNats "casechat-be/pkg/nats"
)

type INotificationService interface {
	Start() error
}

// notificationService bridges system events to live clients: document
// lifecycle changes reach the uploading actor, audit gaps reach everyone.
type notificationService struct {
	subscriber *pkgNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewNotificationService(subscriber *pkgNats.Subscriber, hub *websocket.Hub, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *notificationService) Start() error {
	if err := s.subscriber.Subscribe("events.DOCUMENT_INDEXED", "notify-doc-indexed", s.onDocumentEvent); err != nil {
		return err
	}
	if err := s.subscriber.Subscribe("events.DOCUMENT_FAILED", "notify-doc-failed", s.onDocumentEvent); err != nil {
		return err
	}
	return s.subscriber.Subscribe("events.AUDIT_GAP", "notify-audit-gap", s.onAuditGap)
}

func (s *notificationService) onDocumentEvent(_ context.Context, event events.Event) error {
	data := event.Payload()

	if actorId, ok := data["actor_id"].(string); ok && actorId != "" {
		s.hub.Send(actorId, event.EventType(), data)
		return nil
	}
	// Lifecycle events produced by the pipeline carry no actor; everyone
	// watching the document list gets the refresh.
	s.hub.Broadcast(event.EventType(), data)
	return nil
}

func (s *notificationService) onAuditGap(_ context.Context, event events.Event) error {
	s.logger.Error("notifications", "Audit coverage gap reported", event.Payload())
	s.hub.Broadcast(event.EventType(), event.Payload())
	return nil
}
