package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks every live connection and which room, if any, it
// currently occupies. It is the reverse index next to the per-room
// occupant sets; the two are kept in agreement by mutating both only
// inside a room's sequenced unit of work.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.SessionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.SessionID]*connEntry)}
}

// Bind registers a freshly connected client, with no room membership yet.
func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound connection")
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// RoomOf reports the room the connection currently occupies, if any.
func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// SetRoom records room membership for a bound connection.
func (r *Registry) SetRoom(sid core.SessionID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return false
	}
	e.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("set room")
	return true
}

// ClearRoom drops the membership record, keeping the connection bound.
func (r *Registry) ClearRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[sid]; ok {
		e.RoomID = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("cleared room association")
}

// Cancel stops the connection's pumps via its bound cancel func.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled connection")
	return true
}
