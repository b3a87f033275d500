package engine

import "errors"

// Rule violations. Every one of them rejects a single operation and leaves
// the round untouched.
var (
	ErrInvalidDraw       = errors.New("invalid draw")
	ErrInvalidRound      = errors.New("invalid round")
	ErrInvalidCard       = errors.New("invalid card")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrInvalidTurn       = errors.New("illegal card for current trick")
	ErrTurnViolation     = errors.New("not this player's turn")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrEmptyTrick        = errors.New("no cards played in this trick")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
)
