package game

import (
	"fmt"
	"slices"
	"strings"
)

// blackjackScore is the target score
const blackjackScore = 21

// Hand is the cards held by a player, in the order they were dealt.
//
// Alongside the cards it keeps every score the hand could be worth,
// allowing for each Ace counting as 1 or 11, discarding anything over 21.
// The set is updated as each card arrives so earlier cards are never
// rescanned. An empty set means the hand is bust.
type Hand struct {
	cards     []Card
	scores    []int
	listeners Listeners
}

// NewHand creates an empty hand
func NewHand() *Hand {
	return &Hand{scores: []int{0}}
}

// OnChange registers fn to be called after the hand changes. fn is called
// once immediately.
func (h *Hand) OnChange(fn func()) ListenerID {
	return h.listeners.Add(fn)
}

// RemoveListener unregisters a listener added with OnChange
func (h *Hand) RemoveListener(id ListenerID) {
	h.listeners.Remove(id)
}

// Add appends a card to the hand and updates the score
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
	h.tally(card)
	h.listeners.Notify()
}

// Clear empties the hand
func (h *Hand) Clear() {
	h.cards = nil
	h.scores = []int{0}
	h.listeners.Notify()
}

// tally folds one more card into the possible scores
func (h *Hand) tally(card Card) {
	if card.IsAce() {
		// The copies are the "Ace counts 11" branch; the +1 below is
		// applied to both. Totals reached both ways are kept once.
		eleven := make([]int, len(h.scores))
		for i, score := range h.scores {
			eleven[i] = score + pictureCardValue
		}
		h.scores = append(h.scores, eleven...)
	}

	points := card.Points()
	kept := h.scores[:0]
	for _, score := range h.scores {
		total := score + points
		if total <= blackjackScore && !slices.Contains(kept, total) {
			kept = append(kept, total)
		}
	}
	h.scores = kept
}

// Cards returns the cards in deal order
func (h *Hand) Cards() []Card {
	return slices.Clone(h.cards)
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Has reports whether this exact card (by id) is in the hand
func (h *Hand) Has(card Card) bool {
	return slices.ContainsFunc(h.cards, func(c Card) bool {
		return c.id == card.id
	})
}

// Scores returns every attainable total not exceeding 21
func (h *Hand) Scores() []int {
	return slices.Clone(h.scores)
}

// Score returns the best total, or 0 if the hand is bust
func (h *Hand) Score() int {
	if len(h.scores) == 0 {
		return 0
	}
	return slices.Max(h.scores)
}

// IsBust returns true once no total of 21 or under remains
func (h *Hand) IsBust() bool {
	return len(h.scores) == 0
}

// IsBlackjack returns true for a two card 21
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Score() == blackjackScore
}

// CanSplit returns true when the hand is a pair of equal counting value
func (h *Hand) CanSplit() bool {
	return len(h.cards) == 2 && h.cards[0].Points() == h.cards[1].Points()
}

func (h *Hand) String() string {
	lines := make([]string, len(h.cards))
	for i, card := range h.cards {
		lines[i] = fmt.Sprintf("%s of %s", card.DisplayValue(), card.Suit().Symbol())
	}
	return strings.Join(lines, "\n")
}
