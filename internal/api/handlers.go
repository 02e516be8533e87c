package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/game"
	"github.com/calvinwijaya/blackjack-table/internal/randutil"
	"github.com/calvinwijaya/blackjack-table/internal/store"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	DefaultSeats = 3
	MaxSeats     = 7
)

// Config controls how new tables are set up
type Config struct {
	// DefaultSeats is used when a create request does not name a seat count
	DefaultSeats int
	// Seed makes dealing reproducible when non-zero. Each table gets its
	// own stream derived from it.
	Seed int64
}

// Handlers contains all the API handlers
type Handlers struct {
	store  store.Store
	hub    *Hub
	clock  quartz.Clock
	logger *log.Logger
	config Config

	tableCount atomic.Int64
	mu         sync.Mutex
	sessions   map[string]*Session
}

// NewHandlers creates a new instance of Handlers
func NewHandlers(store store.Store, hub *Hub, clock quartz.Clock, logger *log.Logger, config Config) *Handlers {
	if config.DefaultSeats <= 0 {
		config.DefaultSeats = DefaultSeats
	}
	return &Handlers{
		store:    store,
		hub:      hub,
		clock:    clock,
		logger:   logger.WithPrefix("api"),
		config:   config,
		sessions: make(map[string]*Session),
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Table endpoints
	r.HandleFunc("/api/table", h.CreateTable).Methods("POST")
	r.HandleFunc("/api/table/list", h.ListTables).Methods("GET")
	r.HandleFunc("/api/table/{id}", h.GetTable).Methods("GET")
	r.HandleFunc("/api/table/{id}", h.DeleteTable).Methods("DELETE")
	r.HandleFunc("/api/table/{id}/settlements", h.GetSettlements).Methods("GET")

	// Round endpoints
	r.HandleFunc("/api/table/{id}/start", h.Start).Methods("POST")
	r.HandleFunc("/api/table/{id}/cmd", h.Cmd).Methods("POST")
	r.HandleFunc("/api/table/{id}/new-game", h.NewGame).Methods("POST")

	// Seat endpoints
	r.HandleFunc("/api/table/{id}/seat/{seat}/name", h.SetName).Methods("PUT")
	r.HandleFunc("/api/table/{id}/seat/{seat}/stake", h.SetStake).Methods("PUT")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.WebSocket)
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// gameError maps engine errors onto HTTP statuses
func gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownSeat):
		errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNoBets),
		errors.Is(err, game.ErrRoundInProgress),
		errors.Is(err, game.ErrNotPlaying),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrBetsClosed):
		errorResponse(w, http.StatusConflict, err.Error())
	default:
		errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) tableOptions() []game.Option {
	opts := []game.Option{game.WithLogger(h.logger)}
	if h.config.Seed != 0 {
		opts = append(opts, game.WithRand(randutil.Stream(h.config.Seed, uint64(h.tableCount.Add(1)))))
	}
	return opts
}

// session returns the live table, loading it from the store if needed
func (h *Handlers) session(id string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[id]; ok {
		return sess, nil
	}

	rec, err := h.store.GetTable(id)
	if err != nil {
		return nil, err
	}
	table, err := game.FromTO(rec.State, h.tableOptions()...)
	if err != nil {
		return nil, err
	}

	sess := &Session{ID: rec.ID, CreatedAt: rec.CreatedAt, table: table}
	sess.watch()
	h.sessions[id] = sess
	h.logger.Info("Table restored", "table", id, "phase", table.Phase())
	return sess, nil
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.session(mux.Vars(r)["id"])
	switch {
	case errors.Is(err, store.ErrNotFound):
		errorResponse(w, http.StatusNotFound, "Table not found")
		return nil, false
	case err != nil:
		h.logger.Error("Failed to load table", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load table")
		return nil, false
	}
	return sess, true
}

// save writes the session's table to the store. Callers hold sess.mu.
func (h *Handlers) save(sess *Session) error {
	return h.store.SaveTable(&store.TableRecord{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: h.clock.Now(),
		State:     sess.table.ToTO(),
	})
}

// mutate runs fn against a table, persists the result and replies with
// the table view. A round that finishes during fn has its settlements
// recorded.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, fn func(*game.Blackjack) error) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.apply(w, sess, fn)
}

func (h *Handlers) apply(w http.ResponseWriter, sess *Session, fn func(*game.Blackjack) error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Deleted while this request waited for the lock
	if sess.closed {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}

	wasEndGame := sess.table.IsEndGame()
	fnErr := fn(sess.table)

	if !wasEndGame && sess.table.IsEndGame() {
		round, err := h.store.SaveSettlements(sess.ID, h.clock.Now(), sess.table.Settlements())
		if err != nil {
			h.logger.Error("Failed to save settlements", "table", sess.ID, "error", err)
		} else {
			h.logger.Info("Round settled", "table", sess.ID, "round", round)
		}
	}
	if err := h.save(sess); err != nil {
		h.logger.Error("Failed to save table", "table", sess.ID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to update table")
		return
	}

	sess.publish(h.hub)

	if fnErr != nil {
		gameError(w, fnErr)
		return
	}
	response(w, http.StatusOK, sess.table.View())
}

// CreateTable opens a new table
func (h *Handlers) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seats int `json:"seats"`
	}

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Seats == 0 {
		req.Seats = h.config.DefaultSeats
	}
	if req.Seats < 1 || req.Seats > MaxSeats {
		errorResponse(w, http.StatusBadRequest, "Seats must be between 1 and "+strconv.Itoa(MaxSeats))
		return
	}

	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: h.clock.Now(),
		table:     game.NewBlackjack(req.Seats, h.tableOptions()...),
	}

	if err := h.save(sess); err != nil {
		h.logger.Error("Failed to save table", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save table")
		return
	}
	sess.watch()

	h.mu.Lock()
	h.sessions[sess.ID] = sess
	h.mu.Unlock()

	h.logger.Info("Table created", "table", sess.ID, "seats", req.Seats)
	h.hub.Broadcast(Message{Type: MessageTableCreated, TableID: sess.ID})

	response(w, http.StatusCreated, map[string]any{
		"id":    sess.ID,
		"table": sess.table.View(),
	})
}

// TableSummary describes a table in the lobby list
type TableSummary struct {
	ID        string     `json:"id"`
	Seats     int        `json:"seats"`
	Phase     game.Phase `json:"phase"`
	Watchers  int        `json:"watchers"`
	UpdatedAt string     `json:"lastUpdated"`
}

// ListTables returns a list of saved tables
func (h *Handlers) ListTables(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListTables()
	if err != nil {
		h.logger.Error("Failed to list tables", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Error retrieving tables")
		return
	}

	tables := make([]TableSummary, 0, len(records))
	for _, rec := range records {
		tables = append(tables, TableSummary{
			ID:        rec.ID,
			Seats:     len(rec.State.Players) - 1,
			Phase:     rec.State.Phase(),
			Watchers:  h.hub.TableClients(rec.ID),
			UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
		})
	}

	response(w, http.StatusOK, tables)
}

// GetTable returns the current state of a table
func (h *Handlers) GetTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	closed := sess.closed
	view := sess.table.View()
	sess.mu.Unlock()

	if closed {
		errorResponse(w, http.StatusNotFound, "Table not found")
		return
	}
	response(w, http.StatusOK, view)
}

// DeleteTable closes a table and forgets its history
func (h *Handlers) DeleteTable(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.deleteTable(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "Table not found")
			return
		}
		h.logger.Error("Failed to delete table", "table", id, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to delete table")
		return
	}

	h.logger.Info("Table deleted", "table", id)
	h.hub.Broadcast(Message{Type: MessageTableDeleted, TableID: id})
	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Table deleted",
	})
}

// deleteTable holds h.mu so the table cannot be restored from the store
// while it is being removed, and the session lock so no request is part
// way through saving it. Lock order is h.mu then sess.mu.
func (h *Handlers) deleteTable(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sess, ok := h.sessions[id]; ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.closed = true
		delete(h.sessions, id)
	}
	return h.store.DeleteTable(id)
}

// GetSettlements returns the settled bets of every finished round
func (h *Handlers) GetSettlements(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.store.GetTable(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "Table not found")
			return
		}
		h.logger.Error("Failed to load table", "table", id, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load table")
		return
	}

	records, err := h.store.GetSettlements(id)
	if err != nil {
		h.logger.Error("Failed to load settlements", "table", id, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Error retrieving settlements")
		return
	}

	response(w, http.StatusOK, records)
}

// Start deals a round to every seat with a stake
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(table *game.Blackjack) error {
		return table.Start()
	})
}

// Cmd performs a player action: double, stand or hit
func (h *Handlers) Cmd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Seat   int    `json:"seat"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutate(w, r, func(table *game.Blackjack) error {
		return table.Cmd(req.Action, req.Seat)
	})
}

// NewGame clears the table for the next round of betting
func (h *Handlers) NewGame(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(table *game.Blackjack) error {
		table.NewGame()
		return nil
	})
}

func seatParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	seat, err := strconv.Atoi(mux.Vars(r)["seat"])
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid seat")
		return 0, false
	}
	return seat, true
}

// SetName renames the player at a seat. An empty name restores the default.
func (h *Handlers) SetName(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutate(w, r, func(table *game.Blackjack) error {
		return table.NamePlayer(seat, req.Name)
	})
}

// SetStake places the bet for a seat. Negative stakes count as 0.
func (h *Handlers) SetStake(w http.ResponseWriter, r *http.Request) {
	seat, ok := seatParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Stake int `json:"stake"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.mutate(w, r, func(table *game.Blackjack) error {
		return table.PlaceStake(seat, req.Stake)
	})
}

// WebSocket subscribes to a table's updates (?tableId=) or, without a
// table, to lobby announcements. The first message carries the current
// table view.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	tableID := r.URL.Query().Get("tableId")
	welcome := Message{Type: MessageWelcome, TableID: tableID}

	if tableID != "" {
		sess, err := h.session(tableID)
		if err != nil {
			errorResponse(w, http.StatusNotFound, "Table not found")
			return
		}
		sess.mu.Lock()
		welcome.Data = sess.table.View()
		sess.mu.Unlock()
	}

	h.hub.Serve(w, r, tableID, welcome)
}
