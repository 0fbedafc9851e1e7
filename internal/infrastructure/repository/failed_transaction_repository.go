package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	domainRepo "github.com/sangkips/tablepos/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type failedTransactionRepository struct {
	db *gorm.DB
}

// NewFailedTransactionRepository creates a new failed transaction repository
func NewFailedTransactionRepository(db *gorm.DB) domainRepo.FailedTransactionRepository {
	return &failedTransactionRepository{db: db}
}

// Save inserts the record. Re-saving a known id is a no-op so backups can be
// imported more than once.
func (r *failedTransactionRepository) Save(ctx context.Context, record *entity.FailedTransaction) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(record).Error
	return wrapDB("save failed transaction", err)
}

func (r *failedTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FailedTransaction, error) {
	var record entity.FailedTransaction
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load failed transaction", err)
	}
	return &record, nil
}

// List returns records newest first, optionally filtered by status.
func (r *failedTransactionRepository) List(ctx context.Context, status *enum.FailedStatus) ([]entity.FailedTransaction, error) {
	query := r.db.WithContext(ctx).Model(&entity.FailedTransaction{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var records []entity.FailedTransaction
	err := query.Order("created_at DESC").Find(&records).Error
	return records, wrapDB("list failed transactions", err)
}

func (r *failedTransactionRepository) Update(ctx context.Context, record *entity.FailedTransaction) error {
	return wrapDB("update failed transaction", r.db.WithContext(ctx).Save(record).Error)
}

func (r *failedTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Delete(&entity.FailedTransaction{}, "id = ?", id).Error
	return wrapDB("delete failed transaction", err)
}
