package domain

import (
	"errors"
	"time"
)

const (
	MaxUsernameLen     = 36
	DefaultCursorColor = "#3B82F6"
)

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
)

// Occupant is the ephemeral per-connection record inside a room
// session. It is never persisted.
type Occupant struct {
	SocketID    string    `json:"socketId"`
	Username    string    `json:"username"`
	CursorColor string    `json:"cursorColor"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// NewOccupant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewOccupant(socketID, username, cursorColor string) (Occupant, error) {
	if username == "" {
		return Occupant{}, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return Occupant{}, ErrUsernameTooLong
	}
	if cursorColor == "" {
		cursorColor = DefaultCursorColor
	}
	return Occupant{
		SocketID:    socketID,
		Username:    username,
		CursorColor: cursorColor,
		JoinedAt:    time.Now(),
	}, nil
}
