package store

import (
	"context"
	"sync"

	"github.com/inklab/sketchroom/internal/domain"
)

type memLog struct {
	actions        []domain.Action
	lastModifiedBy string
}

// Memory is an in-process Store used for tests and single-node dev
// runs without a database.
type Memory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
	logs  map[domain.RoomID]*memLog
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[domain.RoomID]*domain.Room),
		logs:  make(map[domain.RoomID]*memLog),
	}
}

func (m *Memory) GetActiveRoom(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok || !room.IsActive {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (m *Memory) ListPublicRooms(_ context.Context) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		if room.IsActive && room.IsPublic {
			out = append(out, *room)
		}
	}
	return out, nil
}

// CreateRoom stores the room and its empty action log together.
func (m *Memory) CreateRoom(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *room
	m.rooms[room.ID] = &cp
	m.logs[room.ID] = &memLog{}
	return nil
}

func (m *Memory) UpdateRoom(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return domain.ErrRoomNotFound
	}
	cp := *room
	m.rooms[room.ID] = &cp
	return nil
}

func (m *Memory) DeactivateRoom(_ context.Context, id domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.IsActive = false
	return nil
}

func (m *Memory) IncrementUsers(_ context.Context, id domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.CurrentUsers >= room.MaxUsers {
		return domain.ErrRoomFull
	}
	room.CurrentUsers++
	return nil
}

func (m *Memory) DecrementUsers(_ context.Context, id domain.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.CurrentUsers > 0 {
		room.CurrentUsers--
	}
	return nil
}

func (m *Memory) GetOrCreateLog(_ context.Context, id domain.RoomID) (*ActionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(id), nil
}

func (m *Memory) LastSeq(_ context.Context, id domain.RoomID) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.logs[id]
	if !ok || len(l.actions) == 0 {
		return 0, nil
	}
	return l.actions[len(l.actions)-1].Seq, nil
}

func (m *Memory) AppendAction(_ context.Context, id domain.RoomID, action domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.logLocked(id)
	l.actions = append(l.actions, action)
	l.lastModifiedBy = action.UserID
	return nil
}

func (m *Memory) ClearLog(_ context.Context, id domain.RoomID, byUser string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.logLocked(id)
	l.actions = nil
	l.lastModifiedBy = byUser
	return nil
}

func (m *Memory) RemoveAction(_ context.Context, id domain.RoomID, actionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.logLocked(id)
	for i, a := range l.actions {
		if a.ID == actionID {
			l.actions = append(l.actions[:i], l.actions[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) logLocked(id domain.RoomID) *memLog {
	l, ok := m.logs[id]
	if !ok {
		l = &memLog{}
		m.logs[id] = l
	}
	return l
}

func (m *Memory) snapshotLocked(id domain.RoomID) *ActionLog {
	l := m.logLocked(id)
	actions := make([]domain.Action, len(l.actions))
	copy(actions, l.actions)
	return &ActionLog{
		RoomID:         id,
		Actions:        actions,
		TotalActions:   len(actions),
		LastModifiedBy: l.lastModifiedBy,
	}
}
