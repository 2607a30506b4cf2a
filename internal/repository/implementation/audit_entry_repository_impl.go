package implementation

import (
	"context"
	"errors"

	"casechat-be/internal/entity"
	"casechat-be/internal/mapper"
	"casechat-be/internal/model"
	"casechat-be/internal/repository/contract"
	"casechat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AuditEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditEntryRepository(db *gorm.DB) contract.AuditEntryRepository {
	return &AuditEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditEntryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AuditEntryRepositoryImpl) Create(ctx context.Context, entry *entity.AuditEntry) error {
	m := r.mapper.ToModel(entry)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AuditEntryRepositoryImpl) FindLast(ctx context.Context) (*entity.AuditEntry, error) {
	var m model.AuditEntry
	err := r.db.WithContext(ctx).Order("sequence_no DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AuditEntryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AuditEntry, error) {
	var models []*model.AuditEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AuditEntry, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *AuditEntryRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AuditEntry{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
