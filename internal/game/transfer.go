package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
)

// CardTO is the transfer form of a Card
type CardTO struct {
	ID    CardID `json:"id,omitempty"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

// PackTO is the transfer form of a Pack
type PackTO struct {
	Cards []CardTO `json:"cards"`
}

// HandTO is the transfer form of a Hand
type HandTO struct {
	Hand []CardTO `json:"hand"`
}

// PlayerTO is the transfer form of a Player
type PlayerTO struct {
	ID    uint64  `json:"id"`
	Seat  int     `json:"seat"`
	Name  string  `json:"name"`
	Stake int     `json:"stake"`
	Stash float64 `json:"stash"`
	Hand  *HandTO `json:"hand,omitempty"`
}

// TableTO is the transfer form of a whole table, including a round in
// progress.
type TableTO struct {
	Pack        *PackTO      `json:"pack,omitempty"`
	Players     []PlayerTO   `json:"players"`
	ActiveSeats []int        `json:"activeSeats,omitempty"`
	Turn        int          `json:"turn"`
	NoMoreBets  bool         `json:"noMoreBets"`
	IsEndGame   bool         `json:"isEndGame"`
	Settlements []Settlement `json:"settlements,omitempty"`
}

// ToTO converts the card to its transfer form
func (c Card) ToTO() CardTO {
	return CardTO{ID: c.id, Suit: c.suit.Name(), Value: int(c.rank)}
}

// CardFromTO rebuilds a card, validating its suit and rank
func CardFromTO(to CardTO) (Card, error) {
	suit, err := SuitFromName(to.Suit)
	if err != nil {
		return Card{}, err
	}
	rank := Rank(to.Value)
	if !rank.Valid() {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidRank, to.Value)
	}
	return NewCard(to.ID, suit, rank), nil
}

// cardDecoder rebuilds cards, giving ids to cards saved without one and
// rejecting any id seen twice.
type cardDecoder struct {
	ids  *Sequence
	seen map[CardID]bool
}

func newCardDecoder(ids *Sequence) *cardDecoder {
	return &cardDecoder{ids: ids, seen: make(map[CardID]bool)}
}

func (d *cardDecoder) decode(to CardTO) (Card, error) {
	if to.ID == 0 {
		to.ID = CardID(d.ids.Next())
	}
	if d.seen[to.ID] {
		return Card{}, fmt.Errorf("%w: id %d", ErrDuplicateCard, to.ID)
	}
	card, err := CardFromTO(to)
	if err != nil {
		return Card{}, err
	}
	d.seen[card.id] = true
	return card, nil
}

func (d *cardDecoder) decodeAll(tos []CardTO) ([]Card, error) {
	cards := make([]Card, 0, len(tos))
	for _, to := range tos {
		card, err := d.decode(to)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// ToTO converts the pack to its transfer form
func (p *Pack) ToTO() PackTO {
	to := PackTO{Cards: make([]CardTO, len(p.cards))}
	for i, card := range p.cards {
		to.Cards[i] = card.ToTO()
	}
	return to
}

// PackFromTO rebuilds a pack. Cards saved without an id take one from ids.
func PackFromTO(to PackTO, rng *rand.Rand, ids *Sequence) (*Pack, error) {
	return newCardDecoder(ids).pack(to, rng)
}

func (d *cardDecoder) pack(to PackTO, rng *rand.Rand) (*Pack, error) {
	cards, err := d.decodeAll(to.Cards)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	return &Pack{cards: cards, rng: rng}, nil
}

// ToTO converts the hand to its transfer form
func (h *Hand) ToTO() HandTO {
	to := HandTO{Hand: make([]CardTO, len(h.cards))}
	for i, card := range h.cards {
		to.Hand[i] = card.ToTO()
	}
	return to
}

// HandFromTO rebuilds a hand, replaying each card so the score is tallied
func HandFromTO(to HandTO, ids *Sequence) (*Hand, error) {
	return newCardDecoder(ids).hand(to)
}

func (d *cardDecoder) hand(to HandTO) (*Hand, error) {
	cards, err := d.decodeAll(to.Hand)
	if err != nil {
		return nil, fmt.Errorf("hand: %w", err)
	}
	hand := NewHand()
	for _, card := range cards {
		hand.Add(card)
	}
	return hand, nil
}

// ToTO converts the player to its transfer form
func (p *Player) ToTO() PlayerTO {
	to := PlayerTO{
		ID:    p.id,
		Seat:  p.seat,
		Name:  p.name,
		Stake: p.stake,
		Stash: p.stash,
	}
	if p.hand != nil {
		hand := p.hand.ToTO()
		to.Hand = &hand
	}
	return to
}

func (d *cardDecoder) player(to PlayerTO) (*Player, error) {
	player := NewPlayer(to.ID, to.Seat)
	if to.Name != "" {
		player.name = to.Name
	}
	player.stake = max(to.Stake, 0)
	player.stash = to.Stash
	if to.Hand != nil {
		hand, err := d.hand(*to.Hand)
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", to.Seat, err)
		}
		player.hand = hand
	}
	return player, nil
}

// ToTO converts the table to its transfer form
func (b *Blackjack) ToTO() TableTO {
	to := TableTO{
		Players:     make([]PlayerTO, len(b.seats)),
		Turn:        b.turn,
		NoMoreBets:  b.noMoreBets,
		IsEndGame:   b.isEndGame,
		Settlements: slices.Clone(b.settlements),
	}
	if b.pack != nil {
		pack := b.pack.ToTO()
		to.Pack = &pack
	}
	for i, player := range b.seats {
		to.Players[i] = player.ToTO()
	}
	for _, player := range b.active {
		to.ActiveSeats = append(to.ActiveSeats, player.Seat())
	}
	return to
}

// FromTO rebuilds a table saved with ToTO, including seats, hands and a
// round in progress. Listeners are not saved.
func FromTO(to TableTO, opts ...Option) (*Blackjack, error) {
	if len(to.Players) == 0 {
		return nil, fmt.Errorf("%w: no dealer seat", ErrInvalidState)
	}

	b := newTable(opts...)
	b.cardIDs.Skip(uint64(maxCardID(to)) + 1)

	dec := newCardDecoder(b.cardIDs)
	var maxPlayerID uint64
	for i, pto := range to.Players {
		if pto.Seat != i {
			return nil, fmt.Errorf("%w: player %d has seat %d", ErrInvalidState, i, pto.Seat)
		}
		player, err := dec.player(pto)
		if err != nil {
			return nil, err
		}
		b.seats = append(b.seats, player)
		maxPlayerID = max(maxPlayerID, pto.ID)
	}
	b.playerIDs.Skip(maxPlayerID + 1)

	if to.Pack != nil {
		pack, err := dec.pack(*to.Pack, b.rng)
		if err != nil {
			return nil, err
		}
		b.pack = pack
	}

	if err := b.restoreRound(to); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Blackjack) restoreRound(to TableTO) error {
	if !to.NoMoreBets {
		if len(to.ActiveSeats) > 0 || to.IsEndGame {
			return fmt.Errorf("%w: round state without a deal", ErrInvalidState)
		}
		return nil
	}

	if b.pack == nil || len(to.ActiveSeats) == 0 {
		return fmt.Errorf("%w: dealt round without pack or players", ErrInvalidState)
	}
	if !b.Dealer().IsPlaying() {
		return fmt.Errorf("%w: dealt round without a dealer hand", ErrInvalidState)
	}
	prev := DealerSeat
	for _, seat := range to.ActiveSeats {
		if seat <= prev || seat >= len(b.seats) {
			return fmt.Errorf("%w: active seat %d", ErrInvalidState, seat)
		}
		if !b.seats[seat].IsPlaying() {
			return fmt.Errorf("%w: active seat %d has no cards", ErrInvalidState, seat)
		}
		prev = seat
		b.active = append(b.active, b.seats[seat])
	}
	if to.Turn < 0 || to.Turn > len(b.active) || (to.Turn == len(b.active) && !to.IsEndGame) {
		return fmt.Errorf("%w: turn %d", ErrInvalidState, to.Turn)
	}

	b.turn = to.Turn
	b.noMoreBets = true
	b.isEndGame = to.IsEndGame
	b.settlements = slices.Clone(to.Settlements)
	return nil
}

func maxCardID(to TableTO) CardID {
	var id CardID
	if to.Pack != nil {
		for _, card := range to.Pack.Cards {
			id = max(id, card.ID)
		}
	}
	for _, player := range to.Players {
		if player.Hand == nil {
			continue
		}
		for _, card := range player.Hand.Hand {
			id = max(id, card.ID)
		}
	}
	return id
}

// Phase returns the stage of the round the saved table was in
func (to TableTO) Phase() Phase {
	switch {
	case to.IsEndGame:
		return EndGame
	case to.NoMoreBets:
		return Playing
	default:
		return Betting
	}
}
