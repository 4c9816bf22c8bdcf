package model

import "errors"

var (
	ErrInvalidCodeFormat  = errors.New("invalid room code format")
	ErrRoomNotFound       = errors.New("room not found")
	ErrEmptyCatalog       = errors.New("no movies match the filters")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrUnknownMovie       = errors.New("unknown movie")
	ErrInvalidDirection   = errors.New("invalid swipe direction")
	ErrInvalidFilters     = errors.New("invalid filters")
	ErrInvalidName        = errors.New("invalid participant name")
	ErrCodeSpaceExhausted = errors.New("no free room codes")
)
