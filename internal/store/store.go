package store

import (
	"errors"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
)

// ErrNotFound is returned when a table has not been saved
var ErrNotFound = errors.New("table not found")

// TableRecord is a saved table
type TableRecord struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	State     game.TableTO `json:"state"`
}

// SettlementRecord is one settled bet from a finished round
type SettlementRecord struct {
	TableID   string    `json:"tableId"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"createdAt"`
	game.Settlement
}

// Store defines the interface for table storage
type Store interface {
	// SaveTable inserts or replaces a table
	SaveTable(rec *TableRecord) error

	// GetTable retrieves a table by ID
	GetTable(id string) (*TableRecord, error)

	// ListTables returns every saved table
	ListTables() ([]*TableRecord, error)

	// DeleteTable removes a table and its settlements
	DeleteTable(id string) error

	// SaveSettlements records the results of a finished round and
	// returns the round number assigned to it
	SaveSettlements(tableID string, at time.Time, settlements []game.Settlement) (int, error)

	// GetSettlements returns every recorded result for a table, oldest first
	GetSettlements(tableID string) ([]SettlementRecord, error)
}
