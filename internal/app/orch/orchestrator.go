// Package orch routes every room-scoped operation through the room's
// sequencer so that durable commit order and broadcast order are the
// same order by construction.
package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/app"
	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
	"github.com/inklab/sketchroom/internal/store"
)

const defaultPersistTimeout = 3 * time.Second

type Orchestrator struct {
	Registry  *app.Registry
	Rooms     *app.RoomManager
	Seq       *app.Sequencer
	Admission app.AdmissionPolicy
	Store     store.Store

	// PersistTimeout bounds every durable-store call made from inside
	// a unit of work, so a stuck store fails the unit instead of
	// blocking the room's queue.
	PersistTimeout time.Duration
}

func New(reg *app.Registry, rooms *app.RoomManager, seq *app.Sequencer, st store.Store) *Orchestrator {
	return &Orchestrator{
		Registry:       reg,
		Rooms:          rooms,
		Seq:            seq,
		Admission:      app.CapacityPolicy{},
		Store:          st,
		PersistTimeout: defaultPersistTimeout,
	}
}

func (o *Orchestrator) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.PersistTimeout)
}

// persistErr folds store failures into the persist-failure taxonomy,
// keeping not-found and full distinct.
func persistErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrRoomNotFound) || errors.Is(err, domain.ErrRoomFull) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrPersistFailure, err)
}

// send encodes an event and pushes it to a single connection,
// tolerating backpressure drops.
func (o *Orchestrator) send(conn core.SignalConnection, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return
	}
	if err := conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "orch").Msg("send dropped")
	}
}

func (o *Orchestrator) toOthers(rs *core.RoomSession, from core.SessionID, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return
	}
	rs.Broadcast(from, data)
}

func (o *Orchestrator) toRoom(rs *core.RoomSession, v any) {
	data, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode event")
		return
	}
	rs.BroadcastAll(data)
}

// authorize resolves the connection's current room and occupant entry,
// requiring it to match the claimed room id.
func (o *Orchestrator) authorize(sid core.SessionID, roomID domain.RoomID) (*core.RoomSession, domain.Occupant, error) {
	cur, ok := o.Registry.RoomOf(sid)
	if !ok || cur != roomID {
		return nil, domain.Occupant{}, domain.ErrNotInRoom
	}
	rs, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil, domain.Occupant{}, domain.ErrNotInRoom
	}
	occ, ok := rs.Get(sid)
	if !ok {
		return nil, domain.Occupant{}, domain.ErrNotInRoom
	}
	return rs, occ, nil
}

// OccupantsOf is a read-only query that bypasses the sequencer,
// accepting eventual consistency of at most one pending mutation.
func (o *Orchestrator) OccupantsOf(roomID domain.RoomID) []domain.Occupant {
	rs, ok := o.Rooms.Get(roomID)
	if !ok {
		return nil
	}
	return rs.Occupants()
}
