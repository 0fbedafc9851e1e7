package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportPrinter prints the end-of-shift drawer report and returns a
// human-readable outcome.
type ReportPrinter interface {
	PrintDrawerReport(ctx context.Context, drawer *entity.Drawer, movements []entity.DrawerMovement) string
}

// DrawerService drives the cash drawer lifecycle. Operations on one drawer
// never run concurrently.
type DrawerService struct {
	repo    repository.DrawerRepository
	locks   *KeyedLocker
	printer ReportPrinter
	bus     *EventBus
	log     *zap.Logger
}

// NewDrawerService creates a new drawer service
func NewDrawerService(repo repository.DrawerRepository, locks *KeyedLocker, printer ReportPrinter, bus *EventBus, log *zap.Logger) *DrawerService {
	return &DrawerService{
		repo:    repo,
		locks:   locks,
		printer: printer,
		bus:     bus,
		log:     log.Named("drawer"),
	}
}

// Open starts the cashier's shift. A cashier who already has an open drawer
// gets that drawer back unchanged.
func (s *DrawerService) Open(ctx context.Context, cashier entity.Cashier, openingBalance decimal.Decimal, notes string) (*entity.Drawer, error) {
	if openingBalance.IsNegative() {
		return nil, apperror.ErrNegativeAmount
	}

	unlock, err := s.locks.Lock(ctx, cashierKey(cashier.ID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.GetOpenDrawer(ctx, cashier.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("drawer already open", zap.String("drawer_id", existing.ID.String()), zap.String("cashier", cashier.Name))
		return existing, nil
	}

	drawer, err := s.repo.Open(ctx, cashier.ID, cashier.Name, openingBalance.Round(2), strings.TrimSpace(notes))
	if errors.Is(err, apperror.ErrDrawerAlreadyOpen) {
		return s.repo.GetOpenDrawer(ctx, cashier.ID)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("drawer opened",
		zap.String("drawer_id", drawer.ID.String()),
		zap.String("cashier", cashier.Name),
		zap.String("opening_balance", drawer.OpeningBalance.StringFixed(2)),
	)
	s.publish(cashier.ID, "opened")
	return drawer, nil
}

// CashIn adds money to the drawer. A reason is required.
func (s *DrawerService) CashIn(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, reason string) (*entity.Drawer, error) {
	reason, err := validCashMove(amount, reason)
	if err != nil {
		return nil, err
	}
	return s.withDrawer(ctx, drawerID, "cash in", func() (*entity.Drawer, error) {
		return s.repo.CashIn(ctx, drawerID, amount.Round(2), reason)
	})
}

// CashOut removes money, never more than the current balance. A reason is required.
func (s *DrawerService) CashOut(ctx context.Context, drawerID uuid.UUID, amount decimal.Decimal, reason string) (*entity.Drawer, error) {
	reason, err := validCashMove(amount, reason)
	if err != nil {
		return nil, err
	}
	return s.withDrawer(ctx, drawerID, "cash out", func() (*entity.Drawer, error) {
		return s.repo.CashOut(ctx, drawerID, amount.Round(2), reason)
	})
}

// Close ends the shift with the counted cash. It succeeds at most once.
func (s *DrawerService) Close(ctx context.Context, drawerID uuid.UUID, closingBalance decimal.Decimal, notes string) (*entity.Drawer, error) {
	if closingBalance.IsNegative() {
		return nil, apperror.ErrNegativeAmount
	}
	drawer, err := s.withDrawer(ctx, drawerID, "close", func() (*entity.Drawer, error) {
		return s.repo.Close(ctx, drawerID, closingBalance.Round(2), strings.TrimSpace(notes))
	})
	if err != nil {
		return nil, err
	}
	if !drawer.NetCashFlow.IsZero() {
		s.log.Warn("drawer closed with difference",
			zap.String("drawer_id", drawerID.String()),
			zap.String("difference", drawer.NetCashFlow.StringFixed(2)),
		)
	}
	return drawer, nil
}

// Current returns the cashier's open drawer, or nil.
func (s *DrawerService) Current(ctx context.Context, cashierID uuid.UUID) (*entity.Drawer, error) {
	return s.repo.GetOpenDrawer(ctx, cashierID)
}

func (s *DrawerService) Get(ctx context.Context, drawerID uuid.UUID) (*entity.Drawer, error) {
	drawer, err := s.repo.GetByID(ctx, drawerID)
	if err != nil {
		return nil, err
	}
	if drawer == nil {
		return nil, apperror.NewNotFoundError("Drawer")
	}
	return drawer, nil
}

func (s *DrawerService) Movements(ctx context.Context, drawerID uuid.UUID) ([]entity.DrawerMovement, error) {
	if _, err := s.Get(ctx, drawerID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, drawerID)
}

// PrintReport prints the drawer summary. Print problems come back in the
// outcome text, not as an error.
func (s *DrawerService) PrintReport(ctx context.Context, drawerID uuid.UUID) (string, error) {
	drawer, err := s.Get(ctx, drawerID)
	if err != nil {
		return "", err
	}
	movements, err := s.repo.ListMovements(ctx, drawerID)
	if err != nil {
		return "", err
	}
	return s.printer.PrintDrawerReport(ctx, drawer, movements), nil
}

func (s *DrawerService) withDrawer(ctx context.Context, drawerID uuid.UUID, op string, fn func() (*entity.Drawer, error)) (*entity.Drawer, error) {
	unlock, err := s.locks.Lock(ctx, drawerKey(drawerID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	drawer, err := fn()
	if err != nil {
		s.log.Info("drawer operation rejected", zap.String("op", op), zap.String("drawer_id", drawerID.String()), zap.Error(err))
		return nil, err
	}
	s.log.Info("drawer updated",
		zap.String("op", op),
		zap.String("drawer_id", drawerID.String()),
		zap.String("balance", drawer.CurrentBalance.StringFixed(2)),
	)
	s.publish(drawer.CashierID, op)
	return drawer, nil
}

func (s *DrawerService) publish(cashierID uuid.UUID, op string) {
	if s.bus != nil {
		s.bus.Publish(Event{Kind: EventDrawerChanged, CashierID: cashierID, Message: op})
	}
}

func validCashMove(amount decimal.Decimal, reason string) (string, error) {
	if !amount.IsPositive() {
		return "", apperror.ErrAmountNotPositive
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", apperror.ErrReasonRequired
	}
	return reason, nil
}
