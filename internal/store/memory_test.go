package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inklab/sketchroom/internal/domain"
)

func newMemRoom(t *testing.T, m *Memory, maxUsers int) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom("memory room", "tester", "", maxUsers, true, "")
	require.NoError(t, err)
	require.NoError(t, m.CreateRoom(context.Background(), room))
	return room
}

func TestMemory_GetActiveRoom(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	room := newMemRoom(t, m, 20)

	got, err := m.GetActiveRoom(ctx, room.ID)
	req.NoError(err)
	req.Equal(room.Name, got.Name)

	// Mutating the returned copy must not leak into the store.
	got.Name = "scribbled over"
	again, err := m.GetActiveRoom(ctx, room.ID)
	req.NoError(err)
	req.Equal(room.Name, again.Name)

	_, err = m.GetActiveRoom(ctx, "missing")
	req.ErrorIs(err, domain.ErrRoomNotFound)

	req.NoError(m.DeactivateRoom(ctx, room.ID))
	_, err = m.GetActiveRoom(ctx, room.ID)
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestMemory_ListPublicRooms(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()

	public := newMemRoom(t, m, 20)
	private, err := domain.NewRoom("private room", "tester", "", 20, false, "hunter2")
	req.NoError(err)
	req.NoError(m.CreateRoom(ctx, private))

	rooms, err := m.ListPublicRooms(ctx)
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal(public.ID, rooms[0].ID)
}

func TestMemory_UserCounters(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	room := newMemRoom(t, m, 2)

	req.NoError(m.IncrementUsers(ctx, room.ID))
	req.NoError(m.IncrementUsers(ctx, room.ID))
	req.ErrorIs(m.IncrementUsers(ctx, room.ID), domain.ErrRoomFull)

	req.NoError(m.DecrementUsers(ctx, room.ID))
	req.NoError(m.DecrementUsers(ctx, room.ID))
	// Guarded at zero.
	req.NoError(m.DecrementUsers(ctx, room.ID))

	got, err := m.GetActiveRoom(ctx, room.ID)
	req.NoError(err)
	req.Equal(0, got.CurrentUsers)

	req.ErrorIs(m.IncrementUsers(ctx, "missing"), domain.ErrRoomNotFound)
}

func TestMemory_ActionLogLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	room := newMemRoom(t, m, 20)

	history, err := m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	req.Empty(history.Actions)

	last, err := m.LastSeq(ctx, room.ID)
	req.NoError(err)
	req.Zero(last)

	a1 := domain.Action{ID: "a1", Seq: 1, Kind: domain.KindDraw, Tool: domain.ToolPen, UserID: "u1"}
	a2 := domain.Action{ID: "a2", Seq: 2, Kind: domain.KindDraw, Tool: domain.ToolPen, UserID: "u2"}
	req.NoError(m.AppendAction(ctx, room.ID, a1))
	req.NoError(m.AppendAction(ctx, room.ID, a2))

	last, err = m.LastSeq(ctx, room.ID)
	req.NoError(err)
	req.Equal(uint64(2), last)

	history, err = m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	req.Len(history.Actions, 2)
	req.Equal(2, history.TotalActions)
	req.Equal("u2", history.LastModifiedBy)

	// Removal by id; absent ids are no-ops.
	req.NoError(m.RemoveAction(ctx, room.ID, "a1"))
	req.NoError(m.RemoveAction(ctx, room.ID, "a1"))
	history, err = m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	req.Len(history.Actions, 1)
	req.Equal("a2", history.Actions[0].ID)

	req.NoError(m.ClearLog(ctx, room.ID, "mod"))
	history, err = m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	req.Empty(history.Actions)
	req.Equal("mod", history.LastModifiedBy)
}

func TestMemory_SnapshotIsolation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	room := newMemRoom(t, m, 20)

	req.NoError(m.AppendAction(ctx, room.ID, domain.Action{ID: "a1", Seq: 1}))

	snap, err := m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	snap.Actions[0].ID = "tampered"

	fresh, err := m.GetOrCreateLog(ctx, room.ID)
	req.NoError(err)
	req.Equal("a1", fresh.Actions[0].ID)
}

func TestMemory_UpdateRoom(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := NewMemory()
	room := newMemRoom(t, m, 20)

	room.Description = "now with a description"
	req.NoError(m.UpdateRoom(ctx, room))

	got, err := m.GetActiveRoom(ctx, room.ID)
	req.NoError(err)
	req.Equal("now with a description", got.Description)

	missing := *room
	missing.ID = "missing"
	req.ErrorIs(m.UpdateRoom(ctx, &missing), domain.ErrRoomNotFound)
}
