package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tablepos/internal/application/service"
	"github.com/sangkips/tablepos/internal/config"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/infrastructure/backup"
	"github.com/sangkips/tablepos/internal/infrastructure/database"
	"github.com/sangkips/tablepos/internal/infrastructure/repository"
	"github.com/sangkips/tablepos/internal/presentation/http/handler"
	"github.com/sangkips/tablepos/internal/presentation/http/routes"
	"github.com/sangkips/tablepos/pkg/logger"
	"github.com/sangkips/tablepos/pkg/printer"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wired process: configuration, logger, database and services.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB

	printer      *service.PrinterService
	bus          *service.EventBus
	tables       *service.TableService
	drawers      *service.DrawerService
	checkout     *service.CheckoutService
	recovery     *service.RecoveryService
	sessions     *service.SessionManager
	transactions *service.TransactionService
}

// loadBase reads configuration and builds the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

// newApp connects to the database, migrates it and wires every service.
func newApp() (*app, error) {
	cfg, log, err := loadBase()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(&cfg.Database, log, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}
	if err := database.SeedDefaultData(db, log, cfg.POS.TableCount, cfg.POS.WalkInName); err != nil {
		log.Warn("failed to seed default data", zap.Error(err))
	}

	fs := afero.NewOsFs()
	backups, err := backup.NewStore(fs, cfg.POS.BackupDir)
	if err != nil {
		return nil, fmt.Errorf("open local backup store: %w", err)
	}

	thermalPrinter, err := printer.NewPrinterFromConfig(fs, cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialize printer", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	drawerRepo := repository.NewDrawerRepository(db)
	tableRepo := repository.NewTableRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	failedRepo := repository.NewFailedTransactionRepository(db)

	a := &app{cfg: cfg, log: log, db: db}

	locks := service.NewKeyedLocker()
	store := service.NewTableStore()
	a.bus = service.NewEventBus(log)
	a.printer = service.NewPrinterService(thermalPrinter, service.PrinterOptions{
		Type:       cfg.Printer.Type,
		CharWidth:  cfg.Printer.CharWidth,
		KickOnSale: cfg.Printer.KickOnSale,
		Header: entity.ReceiptHeader{
			StoreName: cfg.POS.StoreName,
			Address:   cfg.POS.StoreAddress,
			Phone:     cfg.POS.StorePhone,
			TaxID:     cfg.POS.TaxID,
		},
	}, log)
	a.tables = service.NewTableService(tableRepo, store, log)
	a.drawers = service.NewDrawerService(drawerRepo, locks, a.printer, a.bus, log)
	recorder := service.NewFailureRecorder(failedRepo, backups, log)
	a.checkout = service.NewCheckoutService(
		transactionRepo, drawerRepo, customerRepo, store, a.tables, recorder, a.printer, locks, a.bus,
		service.CheckoutOptions{ExchangeRate: cfg.POS.ExchangeRate, WalkInName: cfg.POS.WalkInName},
		log,
	)
	a.recovery = service.NewRecoveryService(failedRepo, backups, recorder, a.checkout, locks, log)
	a.sessions = service.NewSessionManager(service.SessionDeps{
		Store:         store,
		Tables:        a.tables,
		Checkout:      a.checkout,
		Customers:     customerRepo,
		Products:      productRepo,
		Bus:           a.bus,
		WholesaleMode: cfg.POS.WholesaleMode,
		Log:           log,
	})
	a.transactions = service.NewTransactionService(transactionRepo, productRepo, a.printer, cfg.POS.ExchangeRate, log)

	return a, nil
}

// handlers builds the HTTP handlers over the wired services.
func (a *app) handlers() *routes.Handlers {
	return &routes.Handlers{
		Table:             handler.NewTableHandler(a.tables),
		Session:           handler.NewSessionHandler(a.sessions, a.bus),
		Drawer:            handler.NewDrawerHandler(a.drawers),
		Transaction:       handler.NewTransactionHandler(a.transactions),
		FailedTransaction: handler.NewFailedTransactionHandler(a.recovery),
		Printer:           handler.NewPrinterHandler(a.printer),
	}
}

type backupImporter interface {
	ImportLocalBackups(ctx context.Context) (int, error)
}

// importBackups moves failed transactions saved locally during a database
// outage into the database. A partial import is logged and never fatal.
func importBackups(ctx context.Context, r backupImporter, log *zap.Logger) int {
	imported, err := r.ImportLocalBackups(ctx)
	if err != nil {
		log.Warn("local backups not fully imported", zap.Int("imported", imported), zap.Error(err))
	}
	return imported
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func ginMode(cfg *config.Config) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
}
