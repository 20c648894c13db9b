package domain

import "errors"

// Operation errors. Each is scoped to a single operation and reported
// to the requester only; none is fatal to a connection or the server.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrNotInRoom      = errors.New("not in this room")
	ErrPersistFailure = errors.New("persist failure")
	ErrInvalidPayload = errors.New("invalid payload")
)
