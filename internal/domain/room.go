// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MinRoomNameLen = 2
	MaxRoomNameLen = 50
	MaxDescLen     = 200

	MinRoomUsers     = 2
	MaxRoomUsers     = 50
	DefaultRoomUsers = 20
)

var (
	ErrRoomNameLength = errors.New("room name must be 2-50 characters")
	ErrDescTooLong    = errors.New("description too long")
	ErrBadCapacity    = errors.New("maxUsers must be between 2 and 50")
)

type RoomID string

// NewRoomID returns a short, globally unique room identifier.
func NewRoomID() RoomID {
	return RoomID(uuid.NewString()[:8])
}

// RoomSettings are per-room capability flags.
type RoomSettings struct {
	AllowDrawing bool `json:"allowDrawing"`
	AllowShapes  bool `json:"allowShapes"`
	AllowText    bool `json:"allowText"`
	AllowErase   bool `json:"allowErase"`
}

func DefaultSettings() RoomSettings {
	return RoomSettings{AllowDrawing: true, AllowShapes: true, AllowText: true, AllowErase: true}
}

// Room is the durable record of a collaboration space. CurrentUsers is
// an advisory counter; the session registry holds the live count.
type Room struct {
	ID           RoomID       `json:"roomId"`
	Name         string       `json:"name"`
	CreatedBy    string       `json:"createdBy"`
	Description  string       `json:"description"`
	MaxUsers     int          `json:"maxUsers"`
	CurrentUsers int          `json:"currentUsers"`
	IsActive     bool         `json:"isActive"`
	IsPublic     bool         `json:"isPublic"`
	Password     string       `json:"-"`
	Settings     RoomSettings `json:"settings"`
}

// NewRoom validates fields and fills defaults. Zero maxUsers means the
// default capacity.
func NewRoom(name, createdBy, description string, maxUsers int, isPublic bool, password string) (*Room, error) {
	if len(name) < MinRoomNameLen || len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameLength
	}
	if len(description) > MaxDescLen {
		return nil, ErrDescTooLong
	}
	if maxUsers == 0 {
		maxUsers = DefaultRoomUsers
	}
	if maxUsers < MinRoomUsers || maxUsers > MaxRoomUsers {
		return nil, ErrBadCapacity
	}
	return &Room{
		ID:          NewRoomID(),
		Name:        name,
		CreatedBy:   createdBy,
		Description: description,
		MaxUsers:    maxUsers,
		IsActive:    true,
		IsPublic:    isPublic,
		Password:    password,
		Settings:    DefaultSettings(),
	}, nil
}

func (r *Room) IsFull(liveCount int) bool {
	return liveCount >= r.MaxUsers
}
