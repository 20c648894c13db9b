package orch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/app"
	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
)

// JoinRoom admits a connection into a room. Joining while a member of
// another room runs the full leave sequence there first; both steps
// queue on their own room's sequencer, in that order for this
// connection.
func (o *Orchestrator) JoinRoom(ctx context.Context, sid core.SessionID, req protocol.JoinRoom) error {
	roomID := domain.RoomID(req.RoomID)

	sctx, cancel := o.storeCtx()
	room, err := o.Store.GetActiveRoom(sctx, roomID)
	cancel()
	if err != nil {
		return persistErr(err)
	}

	conn, ok := o.Registry.Conn(sid)
	if !ok {
		return fmt.Errorf("connection %s not bound", sid)
	}
	occ, err := domain.NewOccupant(string(sid), req.Username, req.CursorColor)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	if cur, ok := o.Registry.RoomOf(sid); ok && cur != roomID {
		if err := o.LeaveRoom(ctx, sid, cur); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room", string(cur)).Msg("implicit leave failed")
		}
	}

	return o.Seq.Do(ctx, roomID, func(*app.Unit) error {
		rs, _ := o.Rooms.GetOrCreate(roomID)
		if !o.Admission.Admit(rs.Count(), room.MaxUsers) {
			if rs.Count() == 0 {
				o.Rooms.Stop(roomID)
			}
			return domain.ErrRoomFull
		}

		// Fetch history before mutating anything, so a store failure
		// leaves no partial membership.
		sctx, cancel := o.storeCtx()
		history, err := o.Store.GetOrCreateLog(sctx, roomID)
		cancel()
		if err != nil {
			if rs.Count() == 0 {
				o.Rooms.Stop(roomID)
			}
			return persistErr(err)
		}

		rs.Add(sid, occ, conn)
		o.Registry.SetRoom(sid, roomID)
		users := rs.Occupants()

		info := protocol.RoomInfo{
			Name:         room.Name,
			Description:  room.Description,
			MaxUsers:     room.MaxUsers,
			CurrentUsers: len(users),
			Settings:     room.Settings,
		}
		o.send(conn, protocol.NewRoomJoined(string(roomID), info, users, history.Actions))
		o.toOthers(rs, sid, protocol.NewUserJoined(occ))
		o.toRoom(rs, protocol.NewUsersUpdate(users))

		// Advisory counter; failure does not undo the join.
		sctx, cancel = o.storeCtx()
		if err := o.Store.IncrementUsers(sctx, roomID); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("increment users")
		}
		cancel()

		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("user", occ.Username).Msg("joined room")
		return nil
	})
}

// LeaveRoom removes the connection from the room, notifying the
// remaining occupants. Leaving a room one is not in is a no-op.
func (o *Orchestrator) LeaveRoom(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	return o.Seq.Do(ctx, roomID, func(*app.Unit) error {
		rs, ok := o.Rooms.Get(roomID)
		if !ok {
			if cur, ok := o.Registry.RoomOf(sid); ok && cur == roomID {
				o.Registry.ClearRoom(sid)
			}
			return nil
		}
		occ, removed := rs.Remove(sid)
		if !removed {
			return nil
		}
		o.Registry.ClearRoom(sid)

		o.toRoom(rs, protocol.NewUserLeft(string(sid), occ.Username))
		o.toRoom(rs, protocol.NewUsersUpdate(rs.Occupants()))

		if rs.Count() == 0 {
			o.Rooms.Stop(roomID)
		}

		sctx, cancel := o.storeCtx()
		if err := o.Store.DecrementUsers(sctx, roomID); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			log.Warn().Err(err).Str("module", "orch").Str("room", string(roomID)).Msg("decrement users")
		}
		cancel()

		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Str("user", occ.Username).Msg("left room")
		return nil
	})
}

// Disconnect runs the leave sequence for whatever room the connection
// occupies, then discards it. The leave itself queues, so it runs
// after any unit already ahead of it.
func (o *Orchestrator) Disconnect(ctx context.Context, sid core.SessionID) {
	if roomID, ok := o.Registry.RoomOf(sid); ok {
		if err := o.LeaveRoom(ctx, sid, roomID); err != nil {
			log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("leave on disconnect")
		}
	}
	o.Registry.Unbind(sid)
}
