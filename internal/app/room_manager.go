package app

import (
	"sync"

	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
)

// SessionInfo is a read-only view of one active room for APIs.
type SessionInfo struct {
	RoomID        domain.RoomID `json:"roomId"`
	OccupantCount int           `json:"occupantCount"`
}

// RoomManager owns the set of active room sessions. A session exists
// only while at least one occupant is connected; the durable room
// record outlives it.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.RoomSession
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*core.RoomSession)}
}

// GetOrCreate returns the room's session, activating it for the first
// joiner. The second return reports whether it was just created.
func (m *RoomManager) GetOrCreate(roomID domain.RoomID) (*core.RoomSession, bool) {
	m.mu.RLock()
	rs, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if ok {
		return rs, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rs, ok = m.rooms[roomID]; ok {
		return rs, false
	}
	rs = core.NewRoomSession(roomID)
	m.rooms[roomID] = rs
	return rs, true
}

func (m *RoomManager) Get(roomID domain.RoomID) (*core.RoomSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs, ok := m.rooms[roomID]
	return rs, ok
}

func (m *RoomManager) List() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SessionInfo, 0, len(m.rooms))
	for id, rs := range m.rooms {
		out = append(out, SessionInfo{RoomID: id, OccupantCount: rs.Count()})
	}
	return out
}

// Stop destroys the in-memory session, distinct from the durable
// room's soft delete.
func (m *RoomManager) Stop(roomID domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
}
