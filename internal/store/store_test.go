package store

import (
	"testing"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/db"
	"github.com/calvinwijaya/blackjack-table/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	database, err := db.NewDatabase(db.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return map[string]Store{
		"memory":   NewMemoryStore(),
		"database": NewDatabaseStore(database),
	}
}

func TestStores(t *testing.T) {
	t.Parallel()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
			older := &TableRecord{ID: "a", CreatedAt: start, UpdatedAt: start, State: game.NewBlackjack(1).ToTO()}
			newer := &TableRecord{ID: "b", CreatedAt: start, UpdatedAt: start.Add(time.Hour), State: game.NewBlackjack(3).ToTO()}
			require.NoError(t, s.SaveTable(older))
			require.NoError(t, s.SaveTable(newer))

			got, err := s.GetTable("b")
			require.NoError(t, err)
			assert.Len(t, got.State.Players, 4)

			list, err := s.ListTables()
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "b", list[0].ID)

			_, err = s.GetTable("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			round, err := s.SaveSettlements("a", start, []game.Settlement{{Seat: 1, Outcome: game.OutcomePush}})
			require.NoError(t, err)
			assert.Equal(t, 1, round)
			records, err := s.GetSettlements("a")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, game.OutcomePush, records[0].Outcome)
			assert.Equal(t, "a", records[0].TableID)

			require.NoError(t, s.DeleteTable("a"))
			assert.ErrorIs(t, s.DeleteTable("a"), ErrNotFound)
			records, err = s.GetSettlements("a")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}
