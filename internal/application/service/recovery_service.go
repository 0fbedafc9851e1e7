package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"go.uber.org/zap"
)

// FailureRecorder stores failed transactions, falling back to the local
// backup when the primary store cannot take them.
type FailureRecorder struct {
	repo   repository.FailedTransactionRepository
	backup repository.FailedTransactionBackup
	log    *zap.Logger
}

// NewFailureRecorder creates a new failure recorder
func NewFailureRecorder(repo repository.FailedTransactionRepository, backup repository.FailedTransactionBackup, log *zap.Logger) *FailureRecorder {
	return &FailureRecorder{repo: repo, backup: backup, log: log.Named("recovery")}
}

// Record saves record once. The error is non-nil only when neither store
// accepted it.
func (r *FailureRecorder) Record(ctx context.Context, record *entity.FailedTransaction) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	err := r.repo.Save(context.WithoutCancel(ctx), record)
	if err == nil {
		return nil
	}

	key, backupErr := r.backup.Write(record)
	if backupErr != nil {
		r.log.Error("failed transaction lost: primary and local backup both failed",
			zap.String("id", record.ID.String()),
			zap.NamedError("primary", err),
			zap.NamedError("backup", backupErr),
		)
		return errors.Join(err, backupErr)
	}
	r.log.Warn("failed transaction kept in local backup", zap.String("key", key), zap.Error(err))
	return nil
}

// Submitter runs a checkout without recording failures.
type Submitter interface {
	Submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// RecoveryService lists, retries and cancels failed transactions. Retries
// are operator-initiated and unbounded.
type RecoveryService struct {
	repo     repository.FailedTransactionRepository
	backup   repository.FailedTransactionBackup
	recorder *FailureRecorder
	checkout Submitter
	locks    *KeyedLocker
	log      *zap.Logger
	now      func() time.Time
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(
	repo repository.FailedTransactionRepository,
	backup repository.FailedTransactionBackup,
	recorder *FailureRecorder,
	checkout Submitter,
	locks *KeyedLocker,
	log *zap.Logger,
) *RecoveryService {
	return &RecoveryService{
		repo:     repo,
		backup:   backup,
		recorder: recorder,
		checkout: checkout,
		locks:    locks,
		log:      log.Named("recovery"),
		now:      time.Now,
	}
}

// RecordInput describes a failure to record outside of a checkout.
type RecordInput struct {
	Lines     []entity.LineItem
	Customer  *entity.Customer
	Cashier   entity.Cashier
	Component enum.FailureComponent
	Detail    string
}

// Record stores a new pending failed transaction.
func (s *RecoveryService) Record(ctx context.Context, in RecordInput) (*entity.FailedTransaction, error) {
	record := &entity.FailedTransaction{
		CheckoutKey:      uuid.New(),
		Items:            entity.CloneLines(in.Lines),
		CustomerName:     entity.WalkInCustomerName,
		CashierID:        in.Cashier.ID,
		CashierName:      in.Cashier.Name,
		FailureComponent: in.Component,
		ErrorDetail:      in.Detail,
		CanRetry:         true,
		Status:           enum.FailedPending,
		Attempts:         1,
	}
	if in.Customer.IsRegistered() {
		id := in.Customer.ID
		record.CustomerID = &id
		record.CustomerName = in.Customer.Name
	}
	if err := s.recorder.Record(ctx, record); err != nil {
		return record, err
	}
	return record, nil
}

// List returns failed transactions, newest first. A nil status lists all.
func (s *RecoveryService) List(ctx context.Context, status *enum.FailedStatus) ([]entity.FailedTransaction, error) {
	return s.repo.List(ctx, status)
}

func (s *RecoveryService) Get(ctx context.Context, id uuid.UUID) (*entity.FailedTransaction, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NewNotFoundError("Failed transaction")
	}
	return record, nil
}

// Retry re-submits the record's cart through checkout under its original
// checkout key, using the retrying cashier's open drawer.
func (s *RecoveryService) Retry(ctx context.Context, id uuid.UUID, cashier entity.Cashier) (*CheckoutResult, error) {
	unlock, err := s.locks.Lock(ctx, failedKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsPending() || !record.CanRetry {
		return nil, apperror.ErrNotRetryable
	}

	result, err := s.checkout.Submit(ctx, CheckoutRequest{
		CheckoutKey:      record.CheckoutKey,
		Cashier:          cashier,
		TableID:          record.TableID,
		Lines:            record.Items,
		CustomerID:       record.CustomerID,
		PaidAmount:       record.PaidAmount,
		AddToDebt:        record.AddToDebt,
		Notes:            "retry of failed transaction " + record.ID.String(),
		KeepChangedTable: true,
	})
	if err != nil {
		record.RecordAttempt(failureComponent(err), err.Error(), retryable(err))
		if uerr := s.repo.Update(context.WithoutCancel(ctx), record); uerr != nil {
			s.log.Error("failed to update failed transaction after retry", zap.String("id", id.String()), zap.Error(uerr))
		}
		s.log.Warn("retry failed", zap.String("id", id.String()), zap.Int("attempts", record.Attempts), zap.Error(err))
		return nil, err
	}

	record.MarkResolved(result.Transaction.ID, s.now())
	if err := s.repo.Update(context.WithoutCancel(ctx), record); err != nil {
		// The sale is committed. A later retry replays the same checkout key
		// and resolves the record then.
		s.log.Error("failed to mark failed transaction resolved", zap.String("id", id.String()), zap.Error(err))
	}
	s.log.Info("failed transaction resolved", zap.String("id", id.String()), zap.Uint("transaction_id", result.Transaction.ID))
	return result, nil
}

// Cancel settles a pending record without side effects.
func (s *RecoveryService) Cancel(ctx context.Context, id uuid.UUID) (*entity.FailedTransaction, error) {
	unlock, err := s.locks.Lock(ctx, failedKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.IsPending() {
		return nil, apperror.NewConflictError("Failed transaction is already settled")
	}
	record.MarkCancelled(s.now())
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}
	s.log.Info("failed transaction cancelled", zap.String("id", id.String()))
	return record, nil
}

// Delete removes a settled record.
func (s *RecoveryService) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := s.locks.Lock(ctx, failedKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.IsPending() {
		return apperror.NewConflictError("Pending failed transactions must be retried or cancelled first")
	}
	return s.repo.Delete(ctx, id)
}

// ImportLocalBackups moves records from the local backup into the primary
// store and returns how many were imported. Records that cannot be saved stay
// in the backup for the next run.
func (s *RecoveryService) ImportLocalBackups(ctx context.Context) (int, error) {
	records, readErr := s.backup.ReadAll()
	if readErr != nil {
		s.log.Warn("some local backups could not be read", zap.Error(readErr))
	}

	imported := 0
	var errs []error
	for key, record := range records {
		if err := s.repo.Save(ctx, record); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.backup.Remove(key); err != nil {
			s.log.Warn("imported backup not removed", zap.String("key", key), zap.Error(err))
		}
		imported++
	}

	if imported > 0 {
		s.log.Info("local backups imported", zap.Int("count", imported))
	}
	if len(errs) > 0 {
		return imported, errors.Join(errs...)
	}
	return imported, readErr
}
