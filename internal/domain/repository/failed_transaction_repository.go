package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
)

// FailedTransactionRepository is the primary store for failed checkouts.
type FailedTransactionRepository interface {
	Save(ctx context.Context, record *entity.FailedTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FailedTransaction, error)
	List(ctx context.Context, status *enum.FailedStatus) ([]entity.FailedTransaction, error)
	Update(ctx context.Context, record *entity.FailedTransaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FailedTransactionBackup is the local durable fallback used when the
// primary store cannot be reached. Records are keyed by their id.
type FailedTransactionBackup interface {
	Write(record *entity.FailedTransaction) (string, error)
	ReadAll() (map[string]*entity.FailedTransaction, error)
	Remove(key string) error
}
