package game

import "errors"

var (
	ErrUnknownSuit     = errors.New("unknown suit")
	ErrInvalidRank     = errors.New("invalid rank")
	ErrEmptyPack       = errors.New("draw from empty pack")
	ErrDuplicateCard   = errors.New("duplicate card")
	ErrUnknownSeat     = errors.New("unknown seat")
	ErrNoBets          = errors.New("no bets have been placed")
	ErrRoundInProgress = errors.New("round already in progress")
	ErrNotPlaying      = errors.New("no round is being played")
	ErrNotYourTurn     = errors.New("seat does not hold the turn")
	ErrBetsClosed      = errors.New("no more bets")
)

// ErrInvalidState is returned when a saved table does not describe a
// reachable table state.
var ErrInvalidState = errors.New("invalid table state")
