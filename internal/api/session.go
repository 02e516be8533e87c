package api

import (
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
)

// Session is a live table. The engine is single-threaded; mu serialises
// the HTTP goroutines that drive it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	table  *game.Blackjack
	dirty  bool
	closed bool // set once the table is deleted
}

// watch marks the session dirty whenever the table or one of its seats
// changes. Listeners fire once on registration, so a new session starts
// dirty.
func (s *Session) watch() {
	markDirty := func() { s.dirty = true }
	s.table.OnChange(markDirty)
	for _, player := range s.table.Seats() {
		player.OnChange(markDirty)
	}
}

// publish sends the table view to its WebSocket clients if anything
// changed since the last publish. Callers hold mu.
func (s *Session) publish(hub *Hub) {
	if !s.dirty {
		return
	}
	s.dirty = false
	hub.BroadcastToTable(s.ID, Message{
		Type:    MessageTableUpdate,
		TableID: s.ID,
		Data:    s.table.View(),
	})
}
