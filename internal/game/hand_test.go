package game

import (
	"testing"

	"github.com/calvinwijaya/blackjack-table/internal/randutil"
	"github.com/stretchr/testify/assert"
)

func TestHandScore(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		ranks []Rank
		score int
	}{
		{"empty", nil, 0},
		{"pair of twos", []Rank{Two, Two}, 4},
		{"picture cards count ten", []Rank{King, Queen}, 20},
		{"soft seventeen", []Rank{Ace, Six}, 17},
		{"ace drops to one", []Rank{Ace, Six, Nine}, 16},
		{"two aces", []Rank{Ace, Ace}, 12},
		{"three aces and eight", []Rank{Ace, Ace, Ace, Eight}, 21},
		{"four aces", []Rank{Ace, Ace, Ace, Ace}, 14},
		{"ace plus ten", []Rank{Ten, Ace}, 21},
		{"bust", []Rank{King, Queen, Two}, 0},
		{"ace cannot save a bust", []Rank{King, Queen, Five, Ace}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hand := handOf(tc.ranks...)
			assert.Equal(t, tc.score, hand.Score())
			assert.Equal(t, tc.score == 0 && len(tc.ranks) > 0, hand.IsBust())
		})
	}
}

// bestScore tries every Ace as 1 or 11
func bestScore(ranks []Rank) int {
	best := 0
	var walk func(i, total int)
	walk = func(i, total int) {
		if total > 21 {
			return
		}
		if i == len(ranks) {
			best = max(best, total)
			return
		}
		points := min(int(ranks[i]), 10)
		walk(i+1, total+points)
		if ranks[i] == Ace {
			walk(i+1, total+11)
		}
	}
	walk(0, 0)
	return best
}

func TestHandScoreMatchesExhaustiveSearch(t *testing.T) {
	t.Parallel()
	rng := randutil.New(2024)
	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.IntN(7)
		ranks := make([]Rank, n)
		for i := range ranks {
			// Weight towards aces so the interesting cases come up
			if rng.IntN(3) == 0 {
				ranks[i] = Ace
			} else {
				ranks[i] = Rank(1 + rng.IntN(13))
			}
		}

		hand := NewHand()
		for i, rank := range ranks {
			hand.Add(NewCard(CardID(i+1), Clubs, rank))
			assert.Equal(t, bestScore(ranks[:i+1]), hand.Score(), "ranks %v", ranks[:i+1])
		}
	}
}

func TestHandScoresAreAllTotals(t *testing.T) {
	t.Parallel()
	assert.ElementsMatch(t, []int{2, 12}, handOf(Ace, Ace).Scores())
	assert.ElementsMatch(t, []int{4, 14}, handOf(Ace, Ace, Ace, Ace).Scores())
	assert.ElementsMatch(t, []int{13}, handOf(Ace, Ace, Ace, Ten).Scores())
	assert.ElementsMatch(t, []int{7, 17}, handOf(Ace, Six).Scores())
	assert.Empty(t, handOf(King, King, King).Scores())
}

func TestHandBustIsPermanent(t *testing.T) {
	t.Parallel()
	hand := handOf(King, Queen, Five)
	assert.True(t, hand.IsBust())
	hand.Add(NewCard(10, Spades, Ace))
	assert.True(t, hand.IsBust())
	assert.Equal(t, 0, hand.Score())
}

func TestHandIsBlackjack(t *testing.T) {
	t.Parallel()
	assert.True(t, handOf(Ace, King).IsBlackjack())
	assert.True(t, handOf(Ten, Ace).IsBlackjack())
	assert.False(t, handOf(Seven, Seven, Seven).IsBlackjack())
	assert.False(t, handOf(Ace, Nine).IsBlackjack())
}

func TestHandCanSplit(t *testing.T) {
	t.Parallel()
	assert.True(t, handOf(King, Queen).CanSplit())
	assert.True(t, handOf(Eight, Eight).CanSplit())
	assert.True(t, handOf(Ace, Ace).CanSplit())
	assert.False(t, handOf(Ace, King).CanSplit())
	assert.False(t, handOf(Eight, Eight, Eight).CanSplit())
	assert.False(t, handOf(Eight).CanSplit())
}

func TestHandHasUsesCardIdentity(t *testing.T) {
	t.Parallel()
	dealt := NewCard(1, Spades, Ace)
	twin := NewCard(2, Spades, Ace)

	hand := NewHand()
	hand.Add(dealt)
	assert.True(t, hand.Has(dealt))
	assert.False(t, hand.Has(twin))
}

func TestHandNotifiesAndClears(t *testing.T) {
	t.Parallel()
	hand := NewHand()
	calls := 0
	hand.OnChange(func() { calls++ })
	assert.Equal(t, 1, calls, "registering calls the listener")

	hand.Add(NewCard(1, Hearts, Ace))
	hand.Add(NewCard(2, Hearts, King))
	assert.Equal(t, 3, calls)
	assert.Equal(t, "A of ♥\nK of ♥", hand.String())

	hand.Clear()
	assert.Equal(t, 4, calls)
	assert.Equal(t, 0, hand.Len())
	assert.Equal(t, []int{0}, hand.Scores())
	assert.False(t, hand.IsBust())
}
