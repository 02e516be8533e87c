package game

import (
	"fmt"
	"strconv"
)

// Rank is the face value of a card, 1 (Ace) through 13 (King).
type Rank int

const (
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// pictureCardValue is what tens and picture cards count for
const pictureCardValue = 10

// Valid reports whether the rank is within 1..13
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// CardID identifies one physical card. Two cards with the same suit and
// rank are still different cards when their IDs differ.
type CardID uint64

// Card is an immutable playing card
type Card struct {
	id   CardID
	suit Suit
	rank Rank
}

// NewCard creates a card. The rank is expected to be valid; use
// CardFromTO for untrusted input.
func NewCard(id CardID, suit Suit, rank Rank) Card {
	return Card{id: id, suit: suit, rank: rank}
}

func (c Card) ID() CardID { return c.id }
func (c Card) Suit() Suit { return c.suit }
func (c Card) Rank() Rank { return c.rank }

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.rank == Ace
}

// Points returns the Blackjack counting value with an Ace counted as 1
func (c Card) Points() int {
	return min(int(c.rank), pictureCardValue)
}

// DisplayValue returns the label printed in the card's corner
func (c Card) DisplayValue() string {
	switch c.rank {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(int(c.rank))
	}
}

// String returns the card as label and symbol (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.DisplayValue(), c.suit.Symbol())
}

// CompareValueFirst orders by rank, breaking ties by alphabetic suit
func CompareValueFirst(a, b Card) int {
	if result := int(a.rank) - int(b.rank); result != 0 {
		return result
	}
	return CompareSuits(a.suit, b.suit)
}

// CompareSuitFirst orders by hand-order suit, breaking ties by rank
func CompareSuitFirst(a, b Card) int {
	if result := CompareSuitsHandOrder(a.suit, b.suit); result != 0 {
		return result
	}
	return int(a.rank) - int(b.rank)
}
