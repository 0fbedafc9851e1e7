package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	domainRepo "github.com/sangkips/tablepos/internal/domain/repository"
	"gorm.io/gorm"
)

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new restaurant table repository
func NewTableRepository(db *gorm.DB) domainRepo.TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetAll(ctx context.Context) ([]entity.RestaurantTable, error) {
	var tables []entity.RestaurantTable
	err := r.db.WithContext(ctx).Order("table_number ASC").Find(&tables).Error
	return tables, wrapDB("load tables", err)
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.RestaurantTable, error) {
	var table entity.RestaurantTable
	err := r.db.WithContext(ctx).First(&table, "id = ?", id).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB("load table", err)
	}
	return &table, nil
}

// UpdateStatus reports false when no table has the given id.
func (r *tableRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.RestaurantTable{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return false, wrapDB("update table status", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetStatistics counts tables per status name. Every status is present.
func (r *tableRepository) GetStatistics(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status enum.TableStatus
		Count  int
	}
	err := r.db.WithContext(ctx).
		Model(&entity.RestaurantTable{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDB("load table statistics", err)
	}

	stats := map[string]int{
		enum.TableStatusAvailable.String():    0,
		enum.TableStatusOccupied.String():     0,
		enum.TableStatusReserved.String():     0,
		enum.TableStatusOutOfService.String(): 0,
	}
	total := 0
	for _, row := range rows {
		stats[row.Status.String()] += row.Count
		total += row.Count
	}
	stats["Total"] = total
	return stats, nil
}
