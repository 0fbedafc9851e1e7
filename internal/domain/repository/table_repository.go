package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
)

// TableRepository defines the interface for restaurant table data operations
type TableRepository interface {
	GetAll(ctx context.Context) ([]entity.RestaurantTable, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.RestaurantTable, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) (bool, error)
	GetStatistics(ctx context.Context) (map[string]int, error)
}
