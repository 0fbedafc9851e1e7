package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/internal/infrastructure/backup"
	"github.com/sangkips/tablepos/internal/infrastructure/database"
	infra "github.com/sangkips/tablepos/internal/infrastructure/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/sangkips/tablepos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var errStorageDown = errors.New("connection refused")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// failingTransactions fails Create with a persistence error while fail is set.
type failingTransactions struct {
	repository.TransactionRepository
	fail bool
}

func (f *failingTransactions) Create(ctx context.Context, in *repository.CreateTransactionInput) (*entity.Transaction, error) {
	if f.fail {
		return nil, apperror.NewPersistenceError("create transaction", errStorageDown)
	}
	return f.TransactionRepository.Create(ctx, in)
}

// failingFailedRepo rejects every Save.
type failingFailedRepo struct {
	repository.FailedTransactionRepository
}

func (failingFailedRepo) Save(context.Context, *entity.FailedTransaction) error {
	return apperror.NewPersistenceError("save failed transaction", errStorageDown)
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	log *zap.Logger

	products     repository.ProductRepository
	customers    repository.CustomerRepository
	tableRepo    repository.TableRepository
	transactions *failingTransactions
	failedRepo   repository.FailedTransactionRepository
	backupFs     afero.Fs
	backup       *backup.Store

	locks    *KeyedLocker
	bus      *EventBus
	store    *TableStore
	tables   *TableService
	drawers  *DrawerService
	printer  *PrinterService
	recorder *FailureRecorder
	checkout *CheckoutService
	recovery *RecoveryService
	sessions *SessionManager
	txns     *TransactionService

	cashier entity.Cashier
	tableID []uuid.UUID
}

type fixtureOption func(*fixture)

func withBrokenFailedRepo() fixtureOption {
	return func(f *fixture) { f.failedRepo = failingFailedRepo{f.failedRepo} }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), log, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))
	require.NoError(t, database.SeedDefaultData(db, log, 3, ""))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		db:           db,
		log:          log,
		products:     infra.NewProductRepository(db),
		customers:    infra.NewCustomerRepository(db),
		tableRepo:    infra.NewTableRepository(db),
		transactions: &failingTransactions{TransactionRepository: infra.NewTransactionRepository(db)},
		failedRepo:   infra.NewFailedTransactionRepository(db),
		backupFs:     afero.NewMemMapFs(),
		cashier:      entity.Cashier{ID: uuid.New(), Name: "Amina"},
	}
	for _, opt := range opts {
		opt(f)
	}

	f.backup, err = backup.NewStore(f.backupFs, "/var/lib/tablepos/failed")
	require.NoError(t, err)

	f.locks = NewKeyedLocker()
	f.bus = NewEventBus(log)
	f.store = NewTableStore()
	f.tables = NewTableService(f.tableRepo, f.store, log)
	f.printer = NewPrinterService(printer.NewNullPrinter(), PrinterOptions{Type: "none"}, log)
	f.drawers = NewDrawerService(infra.NewDrawerRepository(db), f.locks, f.printer, f.bus, log)
	f.recorder = NewFailureRecorder(f.failedRepo, f.backup, log)
	f.checkout = NewCheckoutService(
		f.transactions,
		infra.NewDrawerRepository(db),
		f.customers,
		f.store,
		f.tables,
		f.recorder,
		f.printer,
		f.locks,
		f.bus,
		CheckoutOptions{ExchangeRate: dec("1")},
		log,
	)
	f.recovery = NewRecoveryService(f.failedRepo, f.backup, f.recorder, f.checkout, f.locks, log)
	f.sessions = NewSessionManager(SessionDeps{
		Store:     f.store,
		Tables:    f.tables,
		Checkout:  f.checkout,
		Customers: f.customers,
		Products:  f.products,
		Bus:       f.bus,
		Log:       log,
	})
	f.txns = NewTransactionService(f.transactions, f.products, f.printer, dec("1"), log)

	all, err := f.tableRepo.GetAll(f.ctx)
	require.NoError(t, err)
	for _, tbl := range all {
		f.tableID = append(f.tableID, tbl.ID)
	}
	require.Len(t, f.tableID, 3)
	return f
}

func (f *fixture) product(name, stock string, box int) *entity.Product {
	f.t.Helper()
	p := entity.NewProduct(name, strings.ToUpper(name), dec("10"), dec("8"), box)
	p.Quantity = dec(stock)
	require.NoError(f.t, f.products.Create(f.ctx, p))
	return p
}

func (f *fixture) customer(name string) *entity.Customer {
	f.t.Helper()
	c := &entity.Customer{Name: name}
	require.NoError(f.t, f.customers.Create(f.ctx, c))
	return c
}

func (f *fixture) openDrawer(opening string) *entity.Drawer {
	f.t.Helper()
	d, err := f.drawers.Open(f.ctx, f.cashier, dec(opening), "")
	require.NoError(f.t, err)
	return d
}

func (f *fixture) stock(p *entity.Product) decimal.Decimal {
	f.t.Helper()
	got, err := f.products.GetByID(f.ctx, p.ID)
	require.NoError(f.t, err)
	require.NotNil(f.t, got)
	return got.Quantity
}

func (f *fixture) tableStatus(id uuid.UUID) string {
	f.t.Helper()
	tbl, err := f.tableRepo.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, tbl)
	return tbl.Status.String()
}

func cartLine(p *entity.Product, qty, price string) entity.LineItem {
	return entity.LineItem{
		LineID:    uuid.New(),
		Product:   p,
		Quantity:  dec(qty),
		UnitPrice: dec(price),
	}
}
