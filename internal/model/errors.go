package model

import "errors"

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrGameFull     = errors.New("game is full")
	ErrGameOver     = errors.New("game is over")
	ErrNotInGame    = errors.New("player not in game")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrIllegalMove  = errors.New("illegal move")
	ErrNotAITurn    = errors.New("side to move is not AI controlled")
	// ErrStaleSearch means the position changed while an AI search was running.
	ErrStaleSearch   = errors.New("position changed during search")
	ErrInvalidMode   = errors.New("invalid game mode")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrUnauthorized  = errors.New("not authorized to join this game")
)
