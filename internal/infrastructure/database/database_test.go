package database

import (
	"testing"

	"github.com/sangkips/tablepos/internal/config"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMigrateAndSeedIsIdempotent(t *testing.T) {
	log := zaptest.NewLogger(t)
	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:seed?mode=memory&cache=shared",
	}, log, false)
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db, log))
	require.NoError(t, SeedDefaultData(db, log, 4, ""))
	require.NoError(t, SeedDefaultData(db, log, 4, ""))

	var tables []entity.RestaurantTable
	require.NoError(t, db.Order("table_number").Find(&tables).Error)
	require.Len(t, tables, 4)
	assert.Equal(t, "Table 1", tables[0].DisplayName)

	var walkIns int64
	require.NoError(t, db.Model(&entity.Customer{}).Where("is_walk_in = ?", true).Count(&walkIns).Error)
	assert.EqualValues(t, 1, walkIns)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zaptest.NewLogger(t), false)
	assert.Error(t, err)
}
