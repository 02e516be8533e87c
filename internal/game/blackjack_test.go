package game

import (
	"testing"

	"github.com/calvinwijaya/blackjack-table/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(seats int, seed int64) *Blackjack {
	return NewBlackjack(seats, WithRand(randutil.New(seed)))
}

func TestNewBlackjackSeats(t *testing.T) {
	t.Parallel()
	b := newTestTable(3, 1)
	assert.Equal(t, 4, b.SeatQty())
	assert.Equal(t, "Dealer", b.Dealer().Name())
	assert.True(t, b.Dealer().IsDealer())
	for i, player := range b.Seats() {
		assert.Equal(t, i, player.Seat())
	}
	p, err := b.Seat(2)
	require.NoError(t, err)
	assert.Equal(t, "Player 2", p.Name())
	assert.Equal(t, Betting, b.Phase())
	assert.Nil(t, b.Pack())
}

func TestStartWithoutBetsIsNoop(t *testing.T) {
	t.Parallel()
	b := newTestTable(2, 1)
	calls := 0
	b.OnChange(func() { calls++ })

	err := b.Start()
	assert.ErrorIs(t, err, ErrNoBets)
	assert.False(t, b.NoMoreBets())
	assert.Equal(t, Betting, b.Phase())
	assert.Nil(t, b.Pack())
	assert.Equal(t, 1, calls)
}

func TestStartDealsTwoCardsEachAndOneToDealer(t *testing.T) {
	t.Parallel()
	b := newTestTable(4, 8)
	require.NoError(t, b.PlaceStake(1, 10))
	require.NoError(t, b.PlaceStake(2, 20))
	require.NoError(t, b.PlaceStake(4, 5))
	b.Dealer().SetStake(100) // the dealer never bets

	var order []int
	for _, player := range b.Seats() {
		seat := player.Seat()
		first := true
		player.OnChange(func() {
			if first {
				first = false
				return
			}
			order = append(order, seat)
		})
	}
	order = nil

	require.NoError(t, b.Start())

	assert.True(t, b.NoMoreBets())
	assert.Equal(t, Playing, b.Phase())
	assert.Equal(t, PackSize-(2*3+1), b.Pack().Len())
	assert.Equal(t, []int{1, 2, 4, 0, 1, 2, 4}, order)

	assert.Equal(t, 1, b.Dealer().Hand().Len())
	for _, seat := range []int{1, 2, 4} {
		p, _ := b.Seat(seat)
		assert.Equal(t, 2, p.Hand().Len())
	}
	idle, _ := b.Seat(3)
	assert.False(t, idle.IsPlaying())

	active := b.ActivePlayers()
	require.Len(t, active, 3)
	assert.True(t, b.IsActivePlayer(active[0]))
	current, ok := b.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 1, current.Seat())

	assert.ErrorIs(t, b.Start(), ErrRoundInProgress)
	assert.ErrorIs(t, b.PlaceStake(3, 10), ErrBetsClosed)
}

func TestSettlementScenario(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{King, Queen},
		repeat(King, 10),
		seatSetup{stake: 50, cards: []Rank{Ace, King}},
		seatSetup{stake: 30, cards: []Rank{Ten, Eight}},
		seatSetup{stake: 20, cards: []Rank{King, Queen}},
	)

	for seat := 1; seat <= 3; seat++ {
		require.NoError(t, b.Cmd("stand", seat))
	}

	require.True(t, b.IsEndGame())
	assert.Equal(t, EndGame, b.Phase())
	assert.Equal(t, 2, b.Dealer().Hand().Len(), "dealer stands on 20")

	a, _ := b.Seat(1)
	bee, _ := b.Seat(2)
	c, _ := b.Seat(3)
	assert.InDelta(t, 75, a.Stash(), 1e-9)
	assert.InDelta(t, -30, bee.Stash(), 1e-9)
	assert.InDelta(t, 0, c.Stash(), 1e-9)
	assert.InDelta(t, -45, b.Dealer().Stash(), 1e-9)

	settlements := b.Settlements()
	require.Len(t, settlements, 3)
	assert.Equal(t, OutcomeBlackjack, settlements[0].Outcome)
	assert.Equal(t, OutcomeLose, settlements[1].Outcome)
	assert.Equal(t, OutcomePush, settlements[2].Outcome)
	assert.Equal(t, 20, settlements[2].DealerScore)
}

func TestBlackjackBeatsDealerTwentyOne(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Seven, Seven, Seven},
		nil,
		seatSetup{stake: 10, cards: []Rank{Ace, Queen}},
		seatSetup{stake: 10, cards: []Rank{Five, Six, King}},
	)
	require.NoError(t, b.Cmd("stand", 1))
	require.NoError(t, b.Cmd("stand", 2))

	blackjack, _ := b.Seat(1)
	three := b.Settlements()[1]
	assert.InDelta(t, 15, blackjack.Stash(), 1e-9)
	assert.Equal(t, OutcomePush, three.Outcome, "a three card 21 ties the dealer's 21")
}

func TestDealerBlackjackBeatsTwentyOne(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Ace, King},
		nil,
		seatSetup{stake: 40, cards: []Rank{Nine, Two, King}},
	)
	require.NoError(t, b.Cmd("stand", 1))

	p, _ := b.Seat(1)
	assert.InDelta(t, -40, p.Stash(), 1e-9)
	assert.InDelta(t, 40, b.Dealer().Stash(), 1e-9)
}

func TestDealerBustPaysStandingPlayers(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Six, Ten},
		repeat(King, 5),
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{King, Queen}},
	)
	require.NoError(t, b.Cmd("stand", 1))
	require.NoError(t, b.Cmd("hit", 2))

	low, _ := b.Seat(1)
	bust, _ := b.Seat(2)
	assert.True(t, b.Dealer().IsBust())
	assert.True(t, bust.IsBust())
	assert.InDelta(t, 10, low.Stash(), 1e-9)
	assert.InDelta(t, 0, bust.Stash(), 1e-9, "both bust is a push")
}

func TestDealerPlaysToEighteenOrBust(t *testing.T) {
	t.Parallel()
	for seed := int64(0); seed < 50; seed++ {
		b := newTestTable(2, seed)
		require.NoError(t, b.PlaceStake(1, 10))
		require.NoError(t, b.PlaceStake(2, 10))
		require.NoError(t, b.Start())

		require.NoError(t, b.Cmd("stand", 1))
		require.NoError(t, b.Cmd("stand", 2))

		require.True(t, b.IsEndGame())
		dealer := b.Dealer()
		assert.True(t, dealer.IsBust() || dealer.Score() >= 18, "seed %d dealer %d", seed, dealer.Score())

		var total float64
		for _, player := range b.Seats() {
			total += player.Stash()
		}
		assert.InDelta(t, 0, total, 1e-9, "money is only moved between seats")
	}
}

func TestBustOnHitAdvancesTurn(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(King, 10),
		seatSetup{stake: 10, cards: []Rank{King, Queen}},
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{Four, Five}},
	)

	calls := 0
	b.OnChange(func() { calls++ })

	require.NoError(t, b.Cmd("hit", 1))

	current, ok := b.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 2, current.Seat())
	assert.False(t, b.IsEndGame())
	assert.Equal(t, 2, calls, "one call on registration, one for the hit")
}

func TestBustEndingRoundNotifiesOnce(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Ten},
		repeat(Eight, 10),
		seatSetup{stake: 10, cards: []Rank{King, Queen}},
	)
	var seen []bool
	b.OnChange(func() { seen = append(seen, b.IsEndGame()) })

	require.NoError(t, b.Cmd("hit", 1))

	assert.True(t, b.IsEndGame())
	assert.Equal(t, []bool{false, true}, seen)
}

func TestHitWithoutBustKeepsTurn(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(Two, 10),
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
	)
	require.NoError(t, b.Cmd("hit", 1))
	require.NoError(t, b.Cmd("hit", 1))

	current, _ := b.CurrentPlayer()
	assert.Equal(t, 1, current.Seat())
	assert.Equal(t, 9, current.Score())
}

func TestDoubleDownBustAdvancesOnce(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(King, 10),
		seatSetup{stake: 10, cards: []Rank{King, Five}},
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{Four, Five}},
	)

	require.NoError(t, b.Cmd("double", 1))

	doubled, _ := b.Seat(1)
	assert.Equal(t, 20, doubled.Stake())
	assert.Equal(t, 3, doubled.Hand().Len())
	assert.True(t, doubled.IsBust())

	current, ok := b.CurrentPlayer()
	require.True(t, ok)
	assert.Equal(t, 2, current.Seat(), "the bust and the stand must not both advance")
}

func TestDoubleDownTakesExactlyOneCard(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(Two, 10),
		seatSetup{stake: 25, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
	)

	calls := 0
	b.OnChange(func() { calls++ })

	require.NoError(t, b.Cmd("double", 1))
	assert.Equal(t, 2, calls)

	doubled, _ := b.Seat(1)
	assert.Equal(t, 50, doubled.Stake())
	assert.Equal(t, 3, doubled.Hand().Len())
	assert.Equal(t, 7, doubled.Score())

	current, _ := b.CurrentPlayer()
	assert.Equal(t, 2, current.Seat())
}

func TestLastPlayerStandingEndsRound(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Ten},
		repeat(Eight, 10),
		seatSetup{stake: 10, cards: []Rank{Ten, Nine}},
	)
	calls := 0
	b.OnChange(func() { calls++ })

	require.NoError(t, b.Cmd("stand", 1))

	assert.True(t, b.IsEndGame())
	assert.Equal(t, 18, b.Dealer().Score())
	_, ok := b.CurrentPlayer()
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, b.Cmd("hit", 1), ErrNotPlaying)
}

func TestCmdErrors(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(Two, 10),
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
	)
	before := b.ToTO()

	assert.ErrorIs(t, b.Cmd("hit", 7), ErrUnknownSeat)
	assert.ErrorIs(t, b.Cmd("hit", -1), ErrUnknownSeat)
	assert.ErrorIs(t, b.Cmd("stand", 2), ErrNotYourTurn)
	assert.ErrorIs(t, b.Cmd("hit", 0), ErrNotYourTurn)
	assert.NoError(t, b.Cmd("split", 1), "unknown actions are ignored")

	assert.Equal(t, before, b.ToTO())
}

func TestCommandsBeforeDealAreRejected(t *testing.T) {
	t.Parallel()
	b := newTestTable(1, 1)
	assert.ErrorIs(t, b.Cmd("hit", 1), ErrNotPlaying)
	assert.ErrorIs(t, b.Cmd("stand", 1), ErrNotPlaying)
	assert.ErrorIs(t, b.Cmd("double", 1), ErrNotPlaying)
}

func TestDoubleDownOnEmptyPackChangesNothing(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		nil,
		seatSetup{stake: 10, cards: []Rank{Two, Three}},
	)
	assert.ErrorIs(t, b.Cmd("double", 1), ErrEmptyPack)
	assert.ErrorIs(t, b.Cmd("hit", 1), ErrEmptyPack)

	p, _ := b.Seat(1)
	assert.Equal(t, 10, p.Stake())
	assert.Equal(t, 2, p.Hand().Len())
	assert.True(t, b.IsActivePlayer(p))
}

func TestNewGameResets(t *testing.T) {
	t.Parallel()
	b := newTestTable(3, 12)
	require.NoError(t, b.PlaceStake(1, 10))
	require.NoError(t, b.PlaceStake(3, 30))
	require.NoError(t, b.NamePlayer(3, "Grace"))
	require.NoError(t, b.Start())
	require.NoError(t, b.Cmd("stand", 1))
	require.NoError(t, b.Cmd("stand", 3))
	require.True(t, b.IsEndGame())
	stash, _ := b.Seat(3)
	kept := stash.Stash()

	b.NewGame()

	assert.False(t, b.NoMoreBets())
	assert.False(t, b.IsEndGame())
	assert.Equal(t, Betting, b.Phase())
	assert.Empty(t, b.ActivePlayers())
	assert.Empty(t, b.Settlements())
	assert.Nil(t, b.Pack())
	for _, player := range b.Seats() {
		assert.Equal(t, 0, player.Stake())
		assert.False(t, player.IsPlaying())
	}
	assert.Equal(t, kept, stash.Stash(), "stash carries over")
	assert.Equal(t, "Grace", stash.Name())

	require.NoError(t, b.PlaceStake(2, 5))
	require.NoError(t, b.Start())
	assert.Len(t, b.ActivePlayers(), 1)
}

func TestNamePlayerUnknownSeat(t *testing.T) {
	t.Parallel()
	b := newTestTable(1, 1)
	assert.ErrorIs(t, b.NamePlayer(5, "x"), ErrUnknownSeat)
	assert.ErrorIs(t, b.PlaceStake(5, 10), ErrUnknownSeat)
}

func TestPlayerIDsComeFromSequence(t *testing.T) {
	t.Parallel()
	ids := NewSequence(10)
	first := NewBlackjack(1, WithPlayerIDs(ids))
	second := NewBlackjack(1, WithPlayerIDs(ids))

	assert.Equal(t, uint64(11), first.Seats()[1].ID())
	assert.Equal(t, uint64(13), second.Seats()[1].ID())
	assert.Equal(t, "Player 13", second.Seats()[1].Name())
}

func TestView(t *testing.T) {
	t.Parallel()
	b := riggedTable(t,
		[]Rank{Nine},
		repeat(Two, 10),
		seatSetup{stake: 10, cards: []Rank{Eight, Eight}},
		seatSetup{},
	)

	view := b.View()
	assert.Equal(t, Playing, view.Phase)
	assert.Equal(t, 1, view.TurnSeat)
	assert.Equal(t, 10, view.PackRemaining)
	require.Len(t, view.Seats, 3)

	seat := view.Seats[1]
	assert.True(t, seat.IsTurn)
	assert.True(t, seat.CanSplit)
	assert.Equal(t, 16, seat.Score)
	require.Len(t, seat.Cards, 2)
	assert.Equal(t, "8", seat.Cards[0].Label)
	assert.True(t, seat.Cards[0].Red)

	assert.True(t, view.Seats[0].IsDealer)
	assert.False(t, view.Seats[2].Playing)
	assert.Empty(t, view.Seats[2].Cards)
}
