// Package store holds the durable record of rooms and their action
// logs. Implementations must treat each call as independently durable;
// ordering across calls for one room is provided by the caller, which
// only appends from inside that room's sequenced unit of work.
package store

import (
	"context"

	"github.com/inklab/sketchroom/internal/domain"
)

// ActionLog is the ordered durable history of one room, 1:1 with the
// room record and created alongside it.
type ActionLog struct {
	RoomID         domain.RoomID   `json:"roomId"`
	Actions        []domain.Action `json:"actions"`
	TotalActions   int             `json:"totalActions"`
	LastModifiedBy string          `json:"lastModifiedBy,omitempty"`
}

// Store is the durable collaborator behind the session engine.
//
// GetActiveRoom returns domain.ErrRoomNotFound for unknown or
// soft-deleted rooms. IncrementUsers fails with domain.ErrRoomFull at
// the advisory cap; DecrementUsers is guarded at zero and never fails
// for underflow. RemoveAction with an absent action id is a no-op.
type Store interface {
	GetActiveRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
	ListPublicRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, room *domain.Room) error
	UpdateRoom(ctx context.Context, room *domain.Room) error
	DeactivateRoom(ctx context.Context, id domain.RoomID) error
	IncrementUsers(ctx context.Context, id domain.RoomID) error
	DecrementUsers(ctx context.Context, id domain.RoomID) error

	GetOrCreateLog(ctx context.Context, id domain.RoomID) (*ActionLog, error)
	LastSeq(ctx context.Context, id domain.RoomID) (uint64, error)
	AppendAction(ctx context.Context, id domain.RoomID, action domain.Action) error
	ClearLog(ctx context.Context, id domain.RoomID, byUser string) error
	RemoveAction(ctx context.Context, id domain.RoomID, actionID string) error
}
