package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/domain/enum"
)

// TableStore keeps the in-progress sale of every table, keyed by table id.
// Snapshots go in and come out as copies, so no two tables and no caller
// ever share line storage. Entries live in memory only.
type TableStore struct {
	mu     sync.Mutex
	tables map[uuid.UUID]entity.TableTransactionData
	// settled counts resets made by ClearIfMatches, per table.
	settled map[uuid.UUID]uint64
	now     func() time.Time
}

// NewTableStore creates an empty store.
func NewTableStore() *TableStore {
	return &TableStore{
		tables:  make(map[uuid.UUID]entity.TableTransactionData),
		settled: make(map[uuid.UUID]uint64),
		now:     time.Now,
	}
}

// Ensure creates the default data for tableID if it has none.
func (s *TableStore) Ensure(tableID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(tableID)
}

// Save stores a copy of snapshot and returns the table's derived status.
func (s *TableStore) Save(tableID uuid.UUID, snapshot entity.TableTransactionData) enum.TableStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(tableID, snapshot)
}

// Load returns a copy of the table's data, creating it if absent.
func (s *TableStore) Load(tableID uuid.UUID) entity.TableTransactionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(tableID).Clone()
}

// Switch saves snapshot under from, then loads to, as one step. A zero from
// skips the save. Concurrent switches never interleave.
func (s *TableStore) Switch(from uuid.UUID, snapshot entity.TableTransactionData, to uuid.UUID) entity.TableTransactionData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from != uuid.Nil {
		s.saveLocked(from, snapshot)
	}
	return s.ensureLocked(to).Clone()
}

// CloseTable discards the table's data. Unsaved lines are lost.
func (s *TableStore) CloseTable(tableID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, tableID)
}

// Clear resets the table to its default data after a completed checkout.
func (s *TableStore) Clear(tableID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[tableID] = entity.NewTableTransactionData(s.now())
}

// ClearIfMatches resets the table only while it still holds exactly lines.
// It reports whether the reset happened.
func (s *TableStore) ClearIfMatches(tableID uuid.UUID, lines []entity.LineItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tables[tableID]
	if !ok || !entity.SameLines(d.LineItems, lines) {
		return false
	}
	s.tables[tableID] = entity.NewTableTransactionData(s.now())
	s.settled[tableID]++
	return true
}

// Settled returns how many times ClearIfMatches has reset the table.
func (s *TableStore) Settled(tableID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled[tableID]
}

// Status is the derived status of the table: Occupied iff it has lines.
func (s *TableStore) Status(tableID uuid.UUID) enum.TableStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[tableID].DerivedStatus()
}

// Summary returns line count and total for every table holding data.
func (s *TableStore) Summary() map[uuid.UUID]TableSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]TableSummary, len(s.tables))
	for id, d := range s.tables {
		out[id] = TableSummary{Lines: len(d.LineItems), Total: d.Total().Round(2), LastActivity: d.LastActivity}
	}
	return out
}

func (s *TableStore) ensureLocked(tableID uuid.UUID) entity.TableTransactionData {
	d, ok := s.tables[tableID]
	if !ok {
		d = entity.NewTableTransactionData(s.now())
		s.tables[tableID] = d
	}
	return d
}

func (s *TableStore) saveLocked(tableID uuid.UUID, snapshot entity.TableTransactionData) enum.TableStatus {
	d := snapshot.Clone()
	d.LastActivity = s.now()
	s.tables[tableID] = d
	return d.DerivedStatus()
}
