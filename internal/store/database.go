package store

import (
	"errors"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/db"
	"github.com/calvinwijaya/blackjack-table/internal/game"
)

// DatabaseStore is a database implementation of table storage
type DatabaseStore struct {
	db *db.Database
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(database *db.Database) *DatabaseStore {
	return &DatabaseStore{
		db: database,
	}
}

// SaveTable saves a table to the database
func (s *DatabaseStore) SaveTable(rec *TableRecord) error {
	return s.db.SaveTable(db.TableRow{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		State:     rec.State,
	})
}

// GetTable retrieves a table by ID
func (s *DatabaseStore) GetTable(id string) (*TableRecord, error) {
	row, err := s.db.GetTable(id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRow(row), nil
}

// ListTables retrieves all tables
func (s *DatabaseStore) ListTables() ([]*TableRecord, error) {
	rows, err := s.db.ListTables()
	if err != nil {
		return nil, err
	}

	tables := make([]*TableRecord, len(rows))
	for i, row := range rows {
		tables[i] = fromRow(row)
	}
	return tables, nil
}

// DeleteTable removes a table from the database
func (s *DatabaseStore) DeleteTable(id string) error {
	err := s.db.DeleteTable(id)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// SaveSettlements records the results of a round
func (s *DatabaseStore) SaveSettlements(tableID string, at time.Time, settlements []game.Settlement) (int, error) {
	return s.db.SaveSettlements(tableID, at, settlements)
}

// GetSettlements returns the recorded results for a table
func (s *DatabaseStore) GetSettlements(tableID string) ([]SettlementRecord, error) {
	rows, err := s.db.GetSettlements(tableID)
	if err != nil {
		return nil, err
	}

	records := make([]SettlementRecord, len(rows))
	for i, row := range rows {
		records[i] = SettlementRecord{
			TableID:    row.TableID,
			Round:      row.Round,
			CreatedAt:  row.CreatedAt,
			Settlement: row.Settlement,
		}
	}
	return records, nil
}

func fromRow(row *db.TableRow) *TableRecord {
	return &TableRecord{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		State:     row.State,
	}
}
