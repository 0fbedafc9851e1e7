package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/infrastructure/backup"
	"github.com/sangkips/tablepos/internal/infrastructure/database"
	"github.com/sangkips/tablepos/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestImportBackupsMovesRecordsIntoDatabase(t *testing.T) {
	log := zaptest.NewLogger(t)
	db, err := database.NewSQLiteDB("file:cmd_import_backups?mode=memory&cache=shared", log, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, database.AutoMigrate(db, log))

	store, err := backup.NewStore(afero.NewMemMapFs(), "/var/lib/tablepos/failed")
	require.NoError(t, err)
	rec := &entity.FailedTransaction{
		ID:               uuid.New(),
		CheckoutKey:      uuid.New(),
		CashierID:        uuid.New(),
		CashierName:      "Amina",
		PaidAmount:       decimal.NewFromInt(20),
		FailureComponent: enum.FailureDatabase,
		ErrorDetail:      "database unavailable",
		CanRetry:         true,
		Status:           enum.FailedPending,
	}
	_, err = store.Write(rec)
	require.NoError(t, err)

	repo := repository.NewFailedTransactionRepository(db)
	recovery := service.NewRecoveryService(repo, store, service.NewFailureRecorder(repo, store, log), nil, service.NewKeyedLocker(), log)

	assert.Equal(t, 1, importBackups(context.Background(), recovery, log))

	got, err := recovery.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.CheckoutKey, got.CheckoutKey)

	left, err := store.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, left)
}

type partialImporter struct{}

func (partialImporter) ImportLocalBackups(context.Context) (int, error) {
	return 2, errors.New("database is locked")
}

func TestImportBackupsWarnsOnPartialImport(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	assert.Equal(t, 2, importBackups(context.Background(), partialImporter{}, zap.New(core)))

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "local backups not fully imported", entries[0].Message)
	assert.Equal(t, int64(2), entries[0].ContextMap()["imported"])
}
