package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inklab/sketchroom/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	reject bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return ErrSendRejected
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

var ErrSendRejected = errors.New("send rejected")

func occ(name string) domain.Occupant {
	o, _ := domain.NewOccupant("sid-"+name, name, "")
	return o
}

func TestRoomSession_AddRemoveKeepsInsertionOrder(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")

	rs.Add("a", occ("alice"), &fakeConn{})
	rs.Add("b", occ("bob"), &fakeConn{})
	rs.Add("c", occ("carol"), &fakeConn{})

	names := func() []string {
		var out []string
		for _, o := range rs.Occupants() {
			out = append(out, o.Username)
		}
		return out
	}
	req.Equal([]string{"alice", "bob", "carol"}, names())

	removed, ok := rs.Remove("b")
	req.True(ok)
	req.Equal("bob", removed.Username)
	req.Equal([]string{"alice", "carol"}, names())
	req.Equal(2, rs.Count())
}

func TestRoomSession_ReAddKeepsPosition(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")

	rs.Add("a", occ("alice"), &fakeConn{})
	rs.Add("b", occ("bob"), &fakeConn{})
	rs.Add("a", occ("alice2"), &fakeConn{})

	req.Equal(2, rs.Count())
	req.Equal("alice2", rs.Occupants()[0].Username)
}

func TestRoomSession_RemoveUnknown(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")
	_, ok := rs.Remove("ghost")
	req.False(ok)
}

func TestRoomSession_BroadcastSkipsSender(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	rs.Add("a", occ("alice"), a)
	rs.Add("b", occ("bob"), b)
	rs.Add("c", occ("carol"), c)

	res := rs.Broadcast("a", Frame("hello"))
	req.Equal(2, res.SentTo)
	req.Empty(res.Dropped)
	req.Equal(0, a.count())
	req.Equal(1, b.count())
	req.Equal(1, c.count())
}

func TestRoomSession_BroadcastAllIncludesSender(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")
	a, b := &fakeConn{}, &fakeConn{}
	rs.Add("a", occ("alice"), a)
	rs.Add("b", occ("bob"), b)

	res := rs.BroadcastAll(Frame("cleared"))
	req.Equal(2, res.SentTo)
	req.Equal(1, a.count())
	req.Equal(1, b.count())
}

func TestRoomSession_BroadcastReportsDropped(t *testing.T) {
	req := require.New(t)
	rs := NewRoomSession("r1")
	slow := &fakeConn{reject: true}
	rs.Add("a", occ("alice"), &fakeConn{})
	rs.Add("b", occ("bob"), slow)

	res := rs.Broadcast("a", Frame("x"))
	req.Equal(0, res.SentTo)
	req.Equal([]SessionID{"b"}, res.Dropped)
}
