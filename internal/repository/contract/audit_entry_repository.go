package contract

import (
	"context"

	"casechat-be/internal/entity"
	"casechat-be/internal/repository/specification"
)

// AuditEntryRepository is append-only by contract: there is no update or
// delete. The ledger assigns sequence numbers before Create is called.
type AuditEntryRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	FindLast(ctx context.Context) (*entity.AuditEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditEntry, error)
	Count(ctx context.Context) (int64, error)
}
