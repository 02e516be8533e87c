package game

import (
	rand "math/rand/v2"
)

// PackSize is the number of cards in a fresh pack
const PackSize = 52

// Pack is the set of cards not yet dealt. Cards are drawn at random
// rather than from the top, so the pack never needs shuffling.
type Pack struct {
	cards []Card
	rng   *rand.Rand
}

// NewPack creates a full 52 card pack. Every card gets a fresh id from ids.
func NewPack(rng *rand.Rand, ids *Sequence) *Pack {
	pack := &Pack{
		cards: make([]Card, 0, PackSize),
		rng:   rng,
	}

	for _, suit := range Suits() {
		for rank := Ace; rank <= King; rank++ {
			pack.cards = append(pack.cards, NewCard(CardID(ids.Next()), suit, rank))
		}
	}

	return pack
}

// Draw removes and returns a card chosen uniformly from the remaining cards.
// Drawing from an empty pack returns ErrEmptyPack; it means the dealing
// logic asked for more cards than a single pack holds.
func (p *Pack) Draw() (Card, error) {
	if len(p.cards) == 0 {
		return Card{}, ErrEmptyPack
	}

	idx := p.rng.IntN(len(p.cards))
	card := p.cards[idx]

	last := len(p.cards) - 1
	p.cards[idx] = p.cards[last]
	p.cards = p.cards[:last]

	return card, nil
}

// Len returns the number of cards left in the pack
func (p *Pack) Len() int {
	return len(p.cards)
}

// IsEmpty returns true if the pack has no cards left
func (p *Pack) IsEmpty() bool {
	return len(p.cards) == 0
}

// Cards returns a copy of the remaining cards in no particular order
func (p *Pack) Cards() []Card {
	cards := make([]Card, len(p.cards))
	copy(cards, p.cards)
	return cards
}
