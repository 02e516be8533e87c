package game

import "fmt"

// DealerSeat is the seat index of the dealer
const DealerSeat = 0

// Player occupies a seat at the table. Seat 0 is the dealer.
type Player struct {
	id        uint64
	seat      int
	name      string
	stake     int
	stash     float64
	hand      *Hand
	listeners Listeners
}

// NewPlayer creates a player for a seat. The name defaults to "Player <id>".
func NewPlayer(id uint64, seat int) *Player {
	p := &Player{id: id, seat: seat}
	p.name = p.defaultName()
	return p
}

func (p *Player) defaultName() string {
	return fmt.Sprintf("Player %d", p.id)
}

// OnChange registers fn to be called after the player changes. fn is
// called once immediately. Hand changes are reported by the hand's own
// listeners as well.
func (p *Player) OnChange(fn func()) ListenerID {
	return p.listeners.Add(fn)
}

// RemoveListener unregisters a listener added with OnChange
func (p *Player) RemoveListener(id ListenerID) {
	p.listeners.Remove(id)
}

func (p *Player) ID() uint64     { return p.id }
func (p *Player) Seat() int      { return p.seat }
func (p *Player) Name() string   { return p.name }
func (p *Player) Stake() int     { return p.stake }
func (p *Player) Stash() float64 { return p.stash }

// IsDealer returns true for the player in seat 0
func (p *Player) IsDealer() bool {
	return p.seat == DealerSeat
}

// SetName renames the player. An empty name restores the default.
func (p *Player) SetName(name string) {
	if name == "" {
		name = p.defaultName()
	}
	if p.name != name {
		p.name = name
		p.listeners.Notify()
	}
}

// SetStake sets the bet for the current round. Negative values become 0.
func (p *Player) SetStake(stake int) {
	if stake < 0 {
		stake = 0
	}
	if p.stake != stake {
		p.stake = stake
		p.listeners.Notify()
	}
}

// Hand returns the player's hand, or nil if they have not been dealt in
func (p *Player) Hand() *Hand {
	return p.hand
}

// IsPlaying returns true once the player has been dealt a card this round
func (p *Player) IsPlaying() bool {
	return p.hand != nil && p.hand.Len() > 0
}

// IsBust returns false when the player has no hand
func (p *Player) IsBust() bool {
	return p.hand != nil && p.hand.IsBust()
}

// HasBlackjack returns true if the player holds a two card 21
func (p *Player) HasBlackjack() bool {
	return p.hand != nil && p.hand.IsBlackjack()
}

// Score returns the hand's score, 0 if bust or not playing
func (p *Player) Score() int {
	if p.hand == nil {
		return 0
	}
	return p.hand.Score()
}

// AddCard adds an already drawn card to the player's hand
func (p *Player) AddCard(card Card) {
	if p.hand == nil {
		p.hand = NewHand()
	}
	p.hand.Add(card)
	p.listeners.Notify()
}

// DrawCard draws a card from pack and adds it to the player's hand.
// In Blackjack drawing a card is playing it; nothing is hidden.
func (p *Player) DrawCard(pack *Pack) error {
	card, err := pack.Draw()
	if err != nil {
		return fmt.Errorf("seat %d draw: %w", p.seat, err)
	}
	p.AddCard(card)
	return nil
}

// AddToStash adjusts the player's running total. amount may be negative.
func (p *Player) AddToStash(amount float64) {
	p.stash += amount
	p.listeners.Notify()
}

// DoubleDown doubles the stake. The caller deals the extra card and ends
// the turn.
func (p *Player) DoubleDown() {
	p.SetStake(p.stake * 2)
}

// NewHand clears the player's hand ready for the next round
func (p *Player) NewHand() {
	if p.hand != nil {
		p.hand.Clear()
		p.listeners.Notify()
	}
}
