package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when no row matches
var ErrNotFound = errors.New("not found")

type Database struct {
	db     *sql.DB
	driver string
	logger *log.Logger
}

// TableRow is a saved table snapshot
type TableRow struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	State     game.TableTO
}

// SettlementRow is one settled bet
type SettlementRow struct {
	TableID   string
	Round     int
	CreatedAt time.Time
	game.Settlement
}

// NewDatabase opens a database connection. driver is "sqlite3" (dsn is a
// file path or ":memory:") or "postgres" (dsn is a connection string).
func NewDatabase(driver, dsn string, logger *log.Logger) (*Database, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection so ":memory:" databases are shared and writes
		// are serialised.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	if logger == nil {
		logger = log.New(io.Discard)
	}
	d := &Database{db: db, driver: driver, logger: logger.WithPrefix("db")}
	if err := d.initTables(); err != nil {
		db.Close()
		return nil, err
	}

	d.logger.Debug("Database ready", "driver", driver)
	return d, nil
}

// initTables creates the necessary tables if they don't exist
func (d *Database) initTables() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			state TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating tables table: %w", err)
	}

	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.driver == DriverPostgres {
		pk = "SERIAL PRIMARY KEY"
	}
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS settlements (
			id ` + pk + `,
			table_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			seat INTEGER NOT NULL,
			name TEXT NOT NULL,
			stake INTEGER NOT NULL,
			score INTEGER NOT NULL,
			dealer_score INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (table_id) REFERENCES tables (id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating settlements table: %w", err)
	}

	return nil
}

// rebind rewrites ? placeholders as $1, $2... for postgres
func (d *Database) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveTable inserts or updates a table snapshot
func (d *Database) SaveTable(row TableRow) error {
	state, err := json.Marshal(row.State)
	if err != nil {
		return fmt.Errorf("error encoding table %s: %w", row.ID, err)
	}

	_, err = d.db.Exec(d.rebind(`
		INSERT INTO tables (id, created_at, updated_at, state)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET updated_at = excluded.updated_at, state = excluded.state
	`), row.ID, row.CreatedAt.UTC(), row.UpdatedAt.UTC(), string(state))
	if err != nil {
		return fmt.Errorf("error saving table %s: %w", row.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(s scanner) (*TableRow, error) {
	var row TableRow
	var state string
	if err := s.Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt, &state); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &row.State); err != nil {
		return nil, fmt.Errorf("error decoding table %s: %w", row.ID, err)
	}
	return &row, nil
}

// GetTable retrieves a table by ID
func (d *Database) GetTable(id string) (*TableRow, error) {
	row, err := scanTable(d.db.QueryRow(d.rebind(`
		SELECT id, created_at, updated_at, state FROM tables WHERE id = ?
	`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// ListTables returns every table, most recently updated first
func (d *Database) ListTables() ([]*TableRow, error) {
	rows, err := d.db.Query(`
		SELECT id, created_at, updated_at, state FROM tables ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []*TableRow
	for rows.Next() {
		row, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, row)
	}

	return tables, rows.Err()
}

// DeleteTable removes a table and its settlements
func (d *Database) DeleteTable(id string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(d.rebind("DELETE FROM settlements WHERE table_id = ?"), id); err != nil {
		return err
	}
	res, err := tx.Exec(d.rebind("DELETE FROM tables WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// SaveSettlements records one round's results and returns its round number
func (d *Database) SaveSettlements(tableID string, at time.Time, settlements []game.Settlement) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var round int
	err = tx.QueryRow(d.rebind(`
		SELECT COALESCE(MAX(round), 0) + 1 FROM settlements WHERE table_id = ?
	`), tableID).Scan(&round)
	if err != nil {
		return 0, fmt.Errorf("error numbering round: %w", err)
	}

	insert := d.rebind(`
		INSERT INTO settlements (table_id, round, seat, name, stake, score, dealer_score, outcome, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, s := range settlements {
		_, err := tx.Exec(insert,
			tableID, round, s.Seat, s.Name, s.Stake, s.Score, s.DealerScore, string(s.Outcome), s.Amount, at.UTC())
		if err != nil {
			return 0, fmt.Errorf("error saving settlement for seat %d: %w", s.Seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	d.logger.Debug("Saved settlements", "table", tableID, "round", round, "count", len(settlements))
	return round, nil
}

// GetSettlements returns a table's settled bets, oldest round first
func (d *Database) GetSettlements(tableID string) ([]SettlementRow, error) {
	rows, err := d.db.Query(d.rebind(`
		SELECT table_id, round, seat, name, stake, score, dealer_score, outcome, amount, created_at
		FROM settlements WHERE table_id = ? ORDER BY round, seat
	`), tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SettlementRow
	for rows.Next() {
		var row SettlementRow
		var outcome string
		err := rows.Scan(&row.TableID, &row.Round, &row.Seat, &row.Name, &row.Stake,
			&row.Score, &row.DealerScore, &outcome, &row.Amount, &row.CreatedAt)
		if err != nil {
			return nil, err
		}
		row.Outcome = game.Outcome(outcome)
		results = append(results, row)
	}

	return results, rows.Err()
}
