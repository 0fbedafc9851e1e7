package database

import (
	"errors"
	"fmt"

	"github.com/sangkips/tablepos/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Product{},
		&entity.Customer{},
		&entity.RestaurantTable{},

		&entity.Drawer{},
		&entity.DrawerMovement{},

		&entity.Transaction{},
		&entity.TransactionDetail{},
		&entity.FailedTransaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates the walk-in customer and numbered tables when absent.
func SeedDefaultData(db *gorm.DB, log *zap.Logger, tableCount int, walkInName string) error {
	if walkInName == "" {
		walkInName = entity.WalkInCustomerName
	}

	var walkIn entity.Customer
	err := db.Where("is_walk_in = ?", true).First(&walkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		walkIn = entity.Customer{Name: walkInName, IsWalkIn: true}
		if err := db.Create(&walkIn).Error; err != nil {
			return fmt.Errorf("failed to create walk-in customer: %w", err)
		}
		log.Info("walk-in customer created", zap.String("id", walkIn.ID.String()))
	} else if err != nil {
		return fmt.Errorf("failed to load walk-in customer: %w", err)
	}

	var existing int64
	if err := db.Model(&entity.RestaurantTable{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count tables: %w", err)
	}
	if existing == 0 && tableCount > 0 {
		tables := make([]entity.RestaurantTable, 0, tableCount)
		for n := 1; n <= tableCount; n++ {
			tables = append(tables, entity.RestaurantTable{
				TableNumber: n,
				DisplayName: fmt.Sprintf("Table %d", n),
			})
		}
		if err := db.Create(&tables).Error; err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
		log.Info("tables created", zap.Int("count", tableCount))
	}

	return nil
}
