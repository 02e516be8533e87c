package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/calvinwijaya/blackjack-table/internal/randutil"
	"github.com/charmbracelet/log"
)

// Phase is the stage of the round the table is in
type Phase string

const (
	Betting Phase = "betting" // Players are placing bets
	Playing Phase = "playing" // Cards are dealt and players are taking turns
	EndGame Phase = "endGame" // The dealer has played and bets are settled
)

// Action is a command a player can issue on their turn
type Action string

const (
	ActionDouble Action = "double"
	ActionStand  Action = "stand"
	ActionHit    Action = "hit"
)

const (
	// dealerStandScore is the score at which the dealer stops drawing
	dealerStandScore = 18
	// blackjackRank beats any other 21 when settling
	blackjackRank   = 22
	blackjackPayout = 1.5
)

// Option configures a Blackjack table
type Option func(*Blackjack)

// WithRand sets the random source used for drawing cards
func WithRand(rng *rand.Rand) Option {
	return func(b *Blackjack) {
		b.rng = rng
	}
}

// WithLogger sets the logger. By default the table logs nothing.
func WithLogger(logger *log.Logger) Option {
	return func(b *Blackjack) {
		b.logger = logger
	}
}

// WithPlayerIDs sets the sequence seat occupants take their ids from.
// Share one sequence between tables to keep ids unique across them.
func WithPlayerIDs(ids *Sequence) Option {
	return func(b *Blackjack) {
		b.playerIDs = ids
	}
}

// Blackjack is a table with a dealer in seat 0 and players in the seats
// after it. It is not safe for concurrent use; every method runs to
// completion, including the listeners it notifies, before returning.
type Blackjack struct {
	// pack is nil until the first round is dealt
	pack *Pack
	// seats holds every seat; seats[0] is the dealer
	seats []*Player
	// active holds the players that placed a bet, in seat order
	active []*Player
	// turn indexes active
	turn        int
	noMoreBets  bool
	isEndGame   bool
	settlements []Settlement

	listeners Listeners
	rng       *rand.Rand
	cardIDs   *Sequence
	playerIDs *Sequence
	logger    *log.Logger
}

// NewBlackjack creates a table with seatQty player seats plus the dealer
func NewBlackjack(seatQty int, opts ...Option) *Blackjack {
	b := newTable(opts...)

	seatQty = max(seatQty, 0)
	for seat := 0; seat <= seatQty; seat++ {
		b.seats = append(b.seats, NewPlayer(b.playerIDs.Next(), seat))
	}
	b.Dealer().SetName("Dealer")

	return b
}

func newTable(opts ...Option) *Blackjack {
	b := &Blackjack{
		cardIDs:   NewSequence(1),
		playerIDs: NewSequence(0),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = randutil.New(time.Now().UnixNano())
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	b.logger = b.logger.WithPrefix("blackjack")
	return b
}

// OnChange registers fn to be called after the table changes. fn is
// called once immediately.
func (b *Blackjack) OnChange(fn func()) ListenerID {
	return b.listeners.Add(fn)
}

// RemoveListener unregisters a listener added with OnChange
func (b *Blackjack) RemoveListener(id ListenerID) {
	b.listeners.Remove(id)
}

// Start closes betting and deals to every seat with a stake. Each player
// gets two cards and the dealer one, dealt a card at a time in seat
// order with the dealer's card after the first pass.
//
// With no stakes placed nothing happens and ErrNoBets is returned.
func (b *Blackjack) Start() error {
	if b.noMoreBets {
		return ErrRoundInProgress
	}

	var active []*Player
	for _, player := range b.seats[1:] {
		if player.Stake() > 0 {
			active = append(active, player)
		}
	}

	if len(active) == 0 {
		b.logger.Info("No bets have been placed")
		return ErrNoBets
	}
	if need := 2*len(active) + 1; need > PackSize {
		return fmt.Errorf("dealing %d players needs %d cards: %w", len(active), need, ErrEmptyPack)
	}

	b.active = active
	b.turn = 0
	b.pack = NewPack(b.rng, b.cardIDs)
	b.noMoreBets = true
	b.isEndGame = false
	b.settlements = nil

	for cardQty := 1; cardQty <= 2; cardQty++ {
		for _, player := range b.active {
			b.deal(player)
		}
		if cardQty == 1 {
			b.deal(b.Dealer())
		}
	}

	b.logger.Debug("Dealt round", "players", len(b.active), "remaining", b.pack.Len())
	b.listeners.Notify()
	return nil
}

// deal draws during Start, where the pack is known to hold enough cards
func (b *Blackjack) deal(player *Player) {
	if err := player.DrawCard(b.pack); err != nil {
		panic(err)
	}
}

// Cmd performs action for the player at seat. Unknown actions are logged
// and ignored. An unknown seat, or a seat that does not hold the turn,
// returns an error and changes nothing.
func (b *Blackjack) Cmd(action string, seat int) error {
	player, err := b.Seat(seat)
	if err != nil {
		b.logger.Error("There isn't a player at seat", "seat", seat, "action", action)
		return err
	}

	switch Action(action) {
	case ActionDouble:
		return b.DoubleDown(player)
	case ActionStand:
		return b.Stand(player)
	case ActionHit:
		return b.Hit(player)
	default:
		b.logger.Warn("Ignoring unknown command", "action", action, "seat", seat)
		return nil
	}
}

func (b *Blackjack) checkTurn(player *Player) error {
	if !b.isPlaying() {
		return ErrNotPlaying
	}
	if b.active[b.turn] != player {
		return fmt.Errorf("seat %d: %w", player.Seat(), ErrNotYourTurn)
	}
	return nil
}

// Hit (or twist) draws the player another card. Going bust ends the turn.
func (b *Blackjack) Hit(player *Player) error {
	if err := b.checkTurn(player); err != nil {
		return err
	}
	if err := b.hit(player); err != nil {
		return err
	}
	if player.IsBust() {
		return b.advanceFrom(player)
	}
	b.listeners.Notify()
	return nil
}

// hit draws without notifying; the caller notifies once the turn is settled
func (b *Blackjack) hit(player *Player) error {
	if err := player.DrawCard(b.pack); err != nil {
		b.logger.Error("Failed to draw card", "seat", player.Seat(), "error", err)
		return err
	}
	if player.IsBust() {
		b.logger.Debug("Player bust", "seat", player.Seat())
	}
	return nil
}

// Stand (or stick) ends the player's turn
func (b *Blackjack) Stand(player *Player) error {
	if err := b.checkTurn(player); err != nil {
		return err
	}
	return b.advanceFrom(player)
}

// DoubleDown doubles the player's stake, deals exactly one more card and
// ends the turn whether or not the card busts the hand.
func (b *Blackjack) DoubleDown(player *Player) error {
	if err := b.checkTurn(player); err != nil {
		return err
	}
	if b.pack.IsEmpty() {
		return ErrEmptyPack
	}

	player.DoubleDown()
	if err := b.hit(player); err != nil {
		return err
	}
	return b.advanceFrom(player)
}

// advanceFrom moves the turn on if player still holds it, notifying once
// the move (and any end of round) is complete.
func (b *Blackjack) advanceFrom(player *Player) error {
	if !b.isPlaying() || b.active[b.turn] != player {
		return nil
	}
	return b.nextPlayer()
}

func (b *Blackjack) nextPlayer() error {
	b.turn++
	if b.turn == len(b.active) {
		return b.endGame()
	}
	b.listeners.Notify()
	return nil
}

// endGame plays the dealer's hand and settles every bet
func (b *Blackjack) endGame() error {
	b.isEndGame = true
	dealer := b.Dealer()

	var drawErr error
	for dealer.Score() > 0 && dealer.Score() < dealerStandScore {
		if drawErr = dealer.DrawCard(b.pack); drawErr != nil {
			b.logger.Error("Dealer could not complete hand", "score", dealer.Score(), "error", drawErr)
			break
		}
	}

	dealerScore := effectiveScore(dealer)
	b.settlements = make([]Settlement, 0, len(b.active))
	for _, player := range b.active {
		b.settlements = append(b.settlements, b.settle(player, dealer, dealerScore))
	}

	b.logger.Debug("Round settled", "dealerScore", dealer.Score(), "dealerStash", dealer.Stash())
	b.listeners.Notify()
	return drawErr
}

func (b *Blackjack) settle(player, dealer *Player, dealerScore int) Settlement {
	score := effectiveScore(player)
	s := Settlement{
		Seat:        player.Seat(),
		Name:        player.Name(),
		Stake:       player.Stake(),
		Score:       player.Score(),
		DealerScore: dealer.Score(),
		Outcome:     OutcomePush,
	}

	switch {
	case score > dealerScore:
		winnings := float64(player.Stake())
		s.Outcome = OutcomeWin
		if player.HasBlackjack() {
			winnings *= blackjackPayout
			s.Outcome = OutcomeBlackjack
		}
		player.AddToStash(winnings)
		dealer.AddToStash(-winnings)
		s.Amount = winnings
	case dealerScore > score:
		stake := float64(player.Stake())
		player.AddToStash(-stake)
		dealer.AddToStash(stake)
		s.Outcome = OutcomeLose
		s.Amount = -stake
	}

	return s
}

// effectiveScore ranks a Blackjack above any other 21; bust counts 0
func effectiveScore(player *Player) int {
	if player.HasBlackjack() {
		return blackjackRank
	}
	return player.Score()
}

// NewGame clears stakes and hands and reopens betting
func (b *Blackjack) NewGame() {
	b.active = nil
	for _, player := range b.seats {
		player.SetStake(0)
		player.NewHand()
	}

	b.pack = nil
	b.turn = 0
	b.noMoreBets = false
	b.isEndGame = false
	b.settlements = nil
	b.listeners.Notify()
}

// NamePlayer renames the player at seat
func (b *Blackjack) NamePlayer(seat int, name string) error {
	player, err := b.Seat(seat)
	if err != nil {
		return err
	}
	player.SetName(name)
	return nil
}

// PlaceStake sets the stake for the player at seat. Any stake above 0
// deals the player into the next round.
func (b *Blackjack) PlaceStake(seat, stake int) error {
	player, err := b.Seat(seat)
	if err != nil {
		return err
	}
	if b.noMoreBets {
		return ErrBetsClosed
	}
	player.SetStake(stake)
	return nil
}

func (b *Blackjack) isPlaying() bool {
	return b.noMoreBets && !b.isEndGame && b.turn < len(b.active)
}

// NoMoreBets returns true from the deal until NewGame
func (b *Blackjack) NoMoreBets() bool {
	return b.noMoreBets
}

// IsEndGame returns true once the round has been settled
func (b *Blackjack) IsEndGame() bool {
	return b.isEndGame
}

// Phase returns the current stage of the round
func (b *Blackjack) Phase() Phase {
	switch {
	case b.isEndGame:
		return EndGame
	case b.noMoreBets:
		return Playing
	default:
		return Betting
	}
}

// IsActivePlayer reports whether it is player's turn
func (b *Blackjack) IsActivePlayer(player *Player) bool {
	return b.isPlaying() && b.active[b.turn] == player
}

// CurrentPlayer returns the player whose turn it is
func (b *Blackjack) CurrentPlayer() (*Player, bool) {
	if !b.isPlaying() {
		return nil, false
	}
	return b.active[b.turn], true
}

// Seat returns the player at seat
func (b *Blackjack) Seat(seat int) (*Player, error) {
	if seat < 0 || seat >= len(b.seats) {
		return nil, fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	return b.seats[seat], nil
}

// Seats returns every seat, dealer first
func (b *Blackjack) Seats() []*Player {
	seats := make([]*Player, len(b.seats))
	copy(seats, b.seats)
	return seats
}

// SeatQty is the number of seats including the dealer's
func (b *Blackjack) SeatQty() int {
	return len(b.seats)
}

// Dealer returns the player in seat 0
func (b *Blackjack) Dealer() *Player {
	return b.seats[DealerSeat]
}

// ActivePlayers returns the players dealt into the current round
func (b *Blackjack) ActivePlayers() []*Player {
	active := make([]*Player, len(b.active))
	copy(active, b.active)
	return active
}

// Pack returns the pack being dealt from, or nil between rounds
func (b *Blackjack) Pack() *Pack {
	return b.pack
}

// Settlements returns the results of the last settled round
func (b *Blackjack) Settlements() []Settlement {
	settlements := make([]Settlement, len(b.settlements))
	copy(settlements, b.settlements)
	return settlements
}
