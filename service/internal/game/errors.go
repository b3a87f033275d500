// internal/game/errors.go
package game

import "errors"

// Structural errors raised by sessions and the store. Rule violations come
// from the engine package and are passed through unchanged.
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrGameAlreadyEnded = errors.New("game already ended")
	ErrGameNotActive    = errors.New("game not accepting this action")
	ErrGameFull         = errors.New("game is full")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrGameStart        = errors.New("game cannot start")
)
