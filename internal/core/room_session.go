package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/domain"
)

type occupantEntry struct {
	occupant domain.Occupant
	conn     SignalConnection
}

// RoomSession is the ephemeral occupant set of one active room. It
// keeps insertion order for occupant listings and never touches
// transport resources beyond TrySend.
//
// All mutations for a room are serialized by that room's sequencer;
// the lock here only protects read-only queries that bypass the queue.
type RoomSession struct {
	roomID domain.RoomID

	mu    sync.RWMutex
	bySID map[SessionID]*occupantEntry
	order []SessionID
}

func NewRoomSession(roomID domain.RoomID) *RoomSession {
	return &RoomSession{
		roomID: roomID,
		bySID:  make(map[SessionID]*occupantEntry),
	}
}

func (r *RoomSession) RoomID() domain.RoomID { return r.roomID }

func (r *RoomSession) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

// Add inserts or overwrites an occupant entry. Re-adding the same
// connection keeps its position in the insertion order.
func (r *RoomSession) Add(sid SessionID, occ domain.Occupant, conn SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; !ok {
		r.order = append(r.order, sid)
	}
	r.bySID[sid] = &occupantEntry{occupant: occ, conn: conn}
	log.Info().Str("module", "core.room").Str("room", string(r.roomID)).Str("sid", string(sid)).Str("user", occ.Username).Msg("occupant added")
}

// Remove deletes the occupant entry and reports the removed profile.
func (r *RoomSession) Remove(sid SessionID) (domain.Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.bySID[sid]
	if !ok {
		return domain.Occupant{}, false
	}
	delete(r.bySID, sid)
	for i, id := range r.order {
		if id == sid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.room").Str("room", string(r.roomID)).Str("sid", string(sid)).Msg("occupant removed")
	return e.occupant, true
}

func (r *RoomSession) Get(sid SessionID) (domain.Occupant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.bySID[sid]; ok {
		return e.occupant, true
	}
	return domain.Occupant{}, false
}

// Occupants returns profiles in insertion order.
func (r *RoomSession) Occupants() []domain.Occupant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Occupant, 0, len(r.order))
	for _, sid := range r.order {
		out = append(out, r.bySID[sid].occupant)
	}
	return out
}

// Broadcast fans a frame out to every occupant except from.
func (r *RoomSession) Broadcast(from SessionID, data Frame) PublishResult {
	return r.publish(data, func(sid SessionID) bool { return sid != from })
}

// BroadcastAll fans a frame out to every occupant, sender included.
func (r *RoomSession) BroadcastAll(data Frame) PublishResult {
	return r.publish(data, func(SessionID) bool { return true })
}

func (r *RoomSession) publish(data Frame, keep func(SessionID) bool) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, sid := range r.order {
		if !keep(sid) {
			continue
		}
		if err := r.bySID[sid].conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.roomID)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
