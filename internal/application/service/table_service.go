package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
	"github.com/sangkips/tablepos/internal/domain/repository"
	"github.com/sangkips/tablepos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TableSummary is the in-memory side of a table's state.
type TableSummary struct {
	Lines        int             `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	LastActivity time.Time       `json:"last_activity"`
}

// TableView is a stored table joined with its current sale.
type TableView struct {
	entity.RestaurantTable
	Lines int             `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// TableService keeps stored table status in line with the table store.
type TableService struct {
	repo  repository.TableRepository
	store *TableStore
	log   *zap.Logger
}

// NewTableService creates a new table service
func NewTableService(repo repository.TableRepository, store *TableStore, log *zap.Logger) *TableService {
	return &TableService{repo: repo, store: store, log: log.Named("tables")}
}

// List returns all tables with derived status, pushing any status that drifted.
func (s *TableService) List(ctx context.Context) ([]TableView, error) {
	tables, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	summary := s.store.Summary()

	views := make([]TableView, 0, len(tables))
	for _, t := range tables {
		sum := summary[t.ID]
		if want := desiredStatus(t.Status, sum.Lines > 0); want != t.Status {
			if err := s.push(ctx, t.ID, want); err != nil {
				return nil, err
			}
			t.Status = want
		}
		views = append(views, TableView{RestaurantTable: t, Lines: sum.Lines, Total: sum.Total})
	}
	return views, nil
}

func (s *TableService) Get(ctx context.Context, tableID uuid.UUID) (*entity.RestaurantTable, error) {
	table, err := s.repo.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperror.NewNotFoundError("Table")
	}
	return table, nil
}

// SyncStatus pushes the table's derived status when the stored one disagrees.
func (s *TableService) SyncStatus(ctx context.Context, tableID uuid.UUID) (enum.TableStatus, error) {
	table, err := s.Get(ctx, tableID)
	if err != nil {
		return 0, err
	}

	want := desiredStatus(table.Status, s.store.Status(tableID) == enum.TableStatusOccupied)
	if want == table.Status {
		return want, nil
	}
	return want, s.push(ctx, tableID, want)
}

// SetManualStatus marks an empty table Reserved or OutOfService, or frees it.
func (s *TableService) SetManualStatus(ctx context.Context, tableID uuid.UUID, status enum.TableStatus) error {
	if status == enum.TableStatusOccupied {
		return apperror.NewBadRequestError("Occupied is derived from the table's items")
	}
	if s.store.Status(tableID) == enum.TableStatusOccupied {
		return apperror.NewConflictError("Table has items")
	}
	return s.push(ctx, tableID, status)
}

// Statistics counts tables per status.
func (s *TableService) Statistics(ctx context.Context) (map[string]int, error) {
	return s.repo.GetStatistics(ctx)
}

func (s *TableService) push(ctx context.Context, tableID uuid.UUID, status enum.TableStatus) error {
	ok, err := s.repo.UpdateStatus(ctx, tableID, status)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFoundError("Table")
	}
	s.log.Debug("table status updated", zap.String("table_id", tableID.String()), zap.Stringer("status", status))
	return nil
}

// desiredStatus is Occupied with items. An empty table keeps a manual status.
func desiredStatus(stored enum.TableStatus, hasItems bool) enum.TableStatus {
	if hasItems {
		return enum.TableStatusOccupied
	}
	if stored.IsManual() {
		return stored
	}
	return enum.TableStatusAvailable
}
