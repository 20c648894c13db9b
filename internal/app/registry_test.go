package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inklab/sketchroom/internal/core"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func TestRegistry_BindAndRoomLifecycle(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	// Given an unbound connection
	_, ok := reg.RoomOf("s1")
	req.False(ok)
	req.False(reg.SetRoom("s1", "r1"))

	// When it binds
	reg.Bind("s1", nopConn{}, nil)
	conn, ok := reg.Conn("s1")
	req.True(ok)
	req.NotNil(conn)

	// Then it has no room until one is set
	_, ok = reg.RoomOf("s1")
	req.False(ok)

	req.True(reg.SetRoom("s1", "r1"))
	roomID, ok := reg.RoomOf("s1")
	req.True(ok)
	req.Equal("r1", string(roomID))

	// A connection occupies at most one room at a time.
	req.True(reg.SetRoom("s1", "r2"))
	roomID, _ = reg.RoomOf("s1")
	req.Equal("r2", string(roomID))

	reg.ClearRoom("s1")
	_, ok = reg.RoomOf("s1")
	req.False(ok)

	// The connection itself stays bound after clearing the room.
	_, ok = reg.Conn("s1")
	req.True(ok)

	reg.Unbind("s1")
	_, ok = reg.Conn("s1")
	req.False(ok)
}

func TestRegistry_CancelInvokesBoundCancel(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	reg.Bind("s1", nopConn{}, cancel)

	req.True(reg.Cancel("s1"))
	req.Error(ctx.Err())
	req.False(reg.Cancel("ghost"))
}
