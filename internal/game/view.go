package game

// CardView is a card as the presentation layer draws it
type CardView struct {
	ID     CardID `json:"id"`
	Suit   string `json:"suit"`
	Symbol string `json:"symbol"`
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Red    bool   `json:"red"`
}

// SeatView is the derived state of one seat
type SeatView struct {
	Seat      int        `json:"seat"`
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Stake     int        `json:"stake"`
	Stash     float64    `json:"stash"`
	Score     int        `json:"score"`
	Bust      bool       `json:"bust"`
	Blackjack bool       `json:"blackjack"`
	CanSplit  bool       `json:"canSplit"`
	Playing   bool       `json:"playing"`
	IsTurn    bool       `json:"isTurn"`
	IsDealer  bool       `json:"isDealer"`
	Cards     []CardView `json:"cards"`
}

// TableView is a read-only snapshot of the table
type TableView struct {
	Phase         Phase        `json:"phase"`
	NoMoreBets    bool         `json:"noMoreBets"`
	IsEndGame     bool         `json:"isEndGame"`
	TurnSeat      int          `json:"turnSeat"` // -1 when nobody holds the turn
	PackRemaining int          `json:"packRemaining"`
	Seats         []SeatView   `json:"seats"`
	Settlements   []Settlement `json:"settlements,omitempty"`
}

func newCardView(c Card) CardView {
	return CardView{
		ID:     c.id,
		Suit:   c.suit.Name(),
		Symbol: c.suit.Symbol(),
		Value:  int(c.rank),
		Label:  c.DisplayValue(),
		Red:    c.suit.IsRed(),
	}
}

func (b *Blackjack) seatView(player *Player) SeatView {
	view := SeatView{
		Seat:      player.Seat(),
		ID:        player.ID(),
		Name:      player.Name(),
		Stake:     player.Stake(),
		Stash:     player.Stash(),
		Score:     player.Score(),
		Bust:      player.IsBust(),
		Blackjack: player.HasBlackjack(),
		Playing:   player.IsPlaying(),
		IsTurn:    b.IsActivePlayer(player),
		IsDealer:  player.IsDealer(),
		Cards:     []CardView{},
	}
	if hand := player.Hand(); hand != nil {
		view.CanSplit = hand.CanSplit()
		for _, card := range hand.cards {
			view.Cards = append(view.Cards, newCardView(card))
		}
	}
	return view
}

// View returns a snapshot of everything the presentation layer shows
func (b *Blackjack) View() TableView {
	view := TableView{
		Phase:       b.Phase(),
		NoMoreBets:  b.noMoreBets,
		IsEndGame:   b.isEndGame,
		TurnSeat:    -1,
		Seats:       make([]SeatView, len(b.seats)),
		Settlements: b.Settlements(),
	}
	if current, ok := b.CurrentPlayer(); ok {
		view.TurnSeat = current.Seat()
	}
	if b.pack != nil {
		view.PackRemaining = b.pack.Len()
	}
	for i, player := range b.seats {
		view.Seats[i] = b.seatView(player)
	}
	return view
}
