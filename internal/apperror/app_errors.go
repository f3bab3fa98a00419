package apperror

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid match configuration")
	ErrInvalidTransition = errors.New("action is not allowed in the current phase")
	ErrNotRevealed       = errors.New("card has not been revealed yet")

	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrNotHost            = errors.New("only the host can perform this action")
	ErrNicknameTaken      = errors.New("nickname is already taken in this room")
	ErrInvalidNickname    = errors.New("invalid nickname")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrAlreadyVoted       = errors.New("player has already voted")
	ErrInvalidVote        = errors.New("invalid vote target")
)
