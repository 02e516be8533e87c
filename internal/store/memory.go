package store

import (
	"sort"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
)

// MemoryStore is an in-memory implementation of table storage
type MemoryStore struct {
	tables      map[string]*TableRecord
	settlements map[string][]SettlementRecord
	rounds      map[string]int
	mu          sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:      make(map[string]*TableRecord),
		settlements: make(map[string][]SettlementRecord),
		rounds:      make(map[string]int),
	}
}

// SaveTable saves a table to the store
func (s *MemoryStore) SaveTable(rec *TableRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	if existing, ok := s.tables[rec.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.tables[rec.ID] = &stored
	return nil
}

// GetTable retrieves a table by ID
func (s *MemoryStore) GetTable(id string) (*TableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.tables[id]
	if !exists {
		return nil, ErrNotFound
	}

	copied := *rec
	return &copied, nil
}

// ListTables returns all tables, most recently updated first
func (s *MemoryStore) ListTables() ([]*TableRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]*TableRecord, 0, len(s.tables))
	for _, rec := range s.tables {
		copied := *rec
		tables = append(tables, &copied)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].UpdatedAt.After(tables[j].UpdatedAt)
	})

	return tables, nil
}

// DeleteTable removes a table from the store
func (s *MemoryStore) DeleteTable(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[id]; !exists {
		return ErrNotFound
	}

	delete(s.tables, id)
	delete(s.settlements, id)
	delete(s.rounds, id)
	return nil
}

// SaveSettlements records the results of a round
func (s *MemoryStore) SaveSettlements(tableID string, at time.Time, settlements []game.Settlement) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rounds[tableID]++
	round := s.rounds[tableID]
	for _, settlement := range settlements {
		s.settlements[tableID] = append(s.settlements[tableID], SettlementRecord{
			TableID:    tableID,
			Round:      round,
			CreatedAt:  at,
			Settlement: settlement,
		})
	}
	return round, nil
}

// GetSettlements returns the recorded results for a table
func (s *MemoryStore) GetSettlements(tableID string) ([]SettlementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]SettlementRecord, len(s.settlements[tableID]))
	copy(records, s.settlements[tableID])
	return records, nil
}
