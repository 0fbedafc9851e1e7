package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := zaptest.NewLogger(t)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), log, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock string, box int) *entity.Product {
	t.Helper()
	p := entity.NewProduct(name, strings.ToUpper(name), dec("10"), dec("8"), box)
	p.Quantity = dec(stock)
	require.NoError(t, NewProductRepository(db).Create(context.Background(), p))
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, name string, walkIn bool) *entity.Customer {
	t.Helper()
	c := &entity.Customer{Name: name, IsWalkIn: walkIn}
	require.NoError(t, NewCustomerRepository(db).Create(context.Background(), c))
	return c
}

func reloadProduct(t *testing.T, db *gorm.DB, p *entity.Product) *entity.Product {
	t.Helper()
	got, err := NewProductRepository(db).GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got
}
