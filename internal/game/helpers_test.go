package game

import (
	"testing"

	"github.com/calvinwijaya/blackjack-table/internal/randutil"
	"github.com/stretchr/testify/require"
)

// handOf builds a hand of spades with the given ranks
func handOf(ranks ...Rank) *Hand {
	hand := NewHand()
	for i, rank := range ranks {
		hand.Add(NewCard(CardID(i+1), Spades, rank))
	}
	return hand
}

type seatSetup struct {
	stake int
	cards []Rank
}

// riggedTable builds a table part way through a round: every seat in
// seats has its stake and cards, the dealer holds dealer, and the pack
// holds only pack.
func riggedTable(t *testing.T, dealer []Rank, pack []Rank, seats ...seatSetup) *Blackjack {
	t.Helper()
	b := NewBlackjack(len(seats), WithRand(randutil.New(1)))

	next := func(rank Rank) Card {
		return NewCard(CardID(b.cardIDs.Next()), Hearts, rank)
	}

	for i, setup := range seats {
		player, err := b.Seat(i + 1)
		require.NoError(t, err)
		player.SetStake(setup.stake)
		for _, rank := range setup.cards {
			player.AddCard(next(rank))
		}
		if setup.stake > 0 {
			b.active = append(b.active, player)
		}
	}
	for _, rank := range dealer {
		b.Dealer().AddCard(next(rank))
	}

	b.pack = &Pack{rng: b.rng}
	for _, rank := range pack {
		b.pack.cards = append(b.pack.cards, next(rank))
	}
	b.noMoreBets = true
	return b
}

func repeat(rank Rank, n int) []Rank {
	ranks := make([]Rank, n)
	for i := range ranks {
		ranks[i] = rank
	}
	return ranks
}
