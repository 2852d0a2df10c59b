package apperror

import "errors"

var (
	ErrOutOfRange       = errors.New("position is out of range")
	ErrNoEmptyCell      = errors.New("no empty cell left for the computer")
	ErrConflictingLines = errors.New("both marks hold a winning line")
	ErrCorruptState     = errors.New("game state violates board invariants")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownPolicy    = errors.New("unknown computer policy")
)
