package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRepositoryStatusAndStatistics(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTableRepository(db)

	tables := []entity.RestaurantTable{
		{TableNumber: 3, DisplayName: "Patio"},
		{TableNumber: 1, DisplayName: "Window"},
		{TableNumber: 2, DisplayName: "Bar"},
	}
	require.NoError(t, db.Create(&tables).Error)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].TableNumber)

	ok, err := repo.UpdateStatus(ctx, all[0].ID, enum.TableStatusOccupied)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateStatus(ctx, all[1].ID, enum.TableStatusReserved)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateStatus(ctx, uuid.New(), enum.TableStatusOccupied)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TableStatusOccupied, got.Status)

	stats, err := repo.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats["Available"])
	assert.Equal(t, 1, stats["Occupied"])
	assert.Equal(t, 1, stats["Reserved"])
	assert.Equal(t, 0, stats["OutOfService"])
	assert.Equal(t, 3, stats["Total"])
}
