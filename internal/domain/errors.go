package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrNameTaken         = errors.New("name already taken in this room")
	ErrUnauthorized      = errors.New("token does not belong to this room")
	ErrAlreadyAssigned   = errors.New("room already assigned")
	ErrInvalidSettings   = errors.New("invalid room settings")
	ErrTaskPoolExhausted = errors.New("task pool cannot satisfy the requested settings")
	ErrIncompleteVotes   = errors.New("tally requires one vote record per player")
	ErrInvalidVote       = errors.New("vote references a player index that does not exist")
	ErrInvalidResult     = errors.New("match result must be win or lose")
)
