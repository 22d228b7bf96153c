package game

import "errors"

// Placement and phase failures are local, synchronous and non-retried: the
// requested action is aborted without mutating any state, and the caller
// decides what to do next.
var (
	// ErrInvalidPlacement means target cells are out of bounds or collide
	// with another piece.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrPieceNotFound means the referenced piece ID does not exist in the
	// tank.
	ErrPieceNotFound = errors.New("piece not found")

	// ErrPhaseViolation means the action is not allowed in the current game
	// phase, e.g. mutating a tank mid-battle.
	ErrPhaseViolation = errors.New("action not allowed in current phase")

	// ErrBattleNotActive means the battle has not been initialized or has
	// already terminated.
	ErrBattleNotActive = errors.New("battle not active")
)
