package db

import (
	"testing"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	d, err := NewDatabase(DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRebind(t *testing.T) {
	t.Parallel()
	pg := &Database{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", pg.rebind("SELECT a FROM t WHERE b = ? AND c = ?"))

	lite := &Database{driver: DriverSQLite}
	assert.Equal(t, "WHERE b = ?", lite.rebind("WHERE b = ?"))
}

func TestUnsupportedDriver(t *testing.T) {
	t.Parallel()
	_, err := NewDatabase("mysql", "", nil)
	assert.Error(t, err)
}

func TestTableLifecycle(t *testing.T) {
	t.Parallel()
	d := newTestDatabase(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	table := game.NewBlackjack(2)
	require.NoError(t, table.PlaceStake(1, 10))
	require.NoError(t, d.SaveTable(TableRow{ID: "t1", CreatedAt: created, UpdatedAt: created, State: table.ToTO()}))

	require.NoError(t, table.Start())
	updated := created.Add(time.Minute)
	require.NoError(t, d.SaveTable(TableRow{ID: "t1", CreatedAt: updated, UpdatedAt: updated, State: table.ToTO()}))

	row, err := d.GetTable("t1")
	require.NoError(t, err)
	assert.True(t, row.CreatedAt.Equal(created), "created_at is kept on update")
	assert.True(t, row.UpdatedAt.Equal(updated))
	assert.Equal(t, table.ToTO(), row.State)

	rows, err := d.ListTables()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, d.DeleteTable("t1"))
	_, err = d.GetTable("t1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, d.DeleteTable("t1"), ErrNotFound)
}

func TestSettlementsAreNumberedByRound(t *testing.T) {
	t.Parallel()
	d := newTestDatabase(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, d.SaveTable(TableRow{ID: "t1", CreatedAt: now, UpdatedAt: now, State: game.NewBlackjack(1).ToTO()}))

	first := []game.Settlement{
		{Seat: 1, Name: "Ada", Stake: 50, Score: 21, DealerScore: 20, Outcome: game.OutcomeBlackjack, Amount: 75},
		{Seat: 2, Name: "Bob", Stake: 30, Score: 18, DealerScore: 20, Outcome: game.OutcomeLose, Amount: -30},
	}
	round, err := d.SaveSettlements("t1", now, first)
	require.NoError(t, err)
	assert.Equal(t, 1, round)

	round, err = d.SaveSettlements("t1", now, first[:1])
	require.NoError(t, err)
	assert.Equal(t, 2, round)

	rows, err := d.GetSettlements("t1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, first[0], rows[0].Settlement)
	assert.Equal(t, first[1], rows[1].Settlement)
	assert.Equal(t, 2, rows[2].Round)

	none, err := d.GetSettlements("other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
