package game

// Outcome is how a player's bet was settled
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeBlackjack Outcome = "blackjack" // Won with a two card 21, paid 3:2
	OutcomeLose      Outcome = "lose"
	OutcomePush      Outcome = "push"
)

// Settlement records the result of one player's bet against the dealer
type Settlement struct {
	Seat        int     `json:"seat"`
	Name        string  `json:"name"`
	Stake       int     `json:"stake"`
	Score       int     `json:"score"`
	DealerScore int     `json:"dealerScore"`
	Outcome     Outcome `json:"outcome"`
	// Amount moved to the player's stash; negative when the dealer won
	Amount float64 `json:"amount"`
}
