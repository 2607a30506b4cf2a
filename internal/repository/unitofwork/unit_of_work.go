package unitofwork

import (
	"context"

	"casechat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
	ChatMessageRepository() contract.ChatMessageRepository
	AuditEntryRepository() contract.AuditEntryRepository
}
