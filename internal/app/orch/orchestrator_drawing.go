package orch

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/app"
	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
)

// DrawingStart is a preview hint: broadcast to the room minus the
// sender, never persisted, never queued.
func (o *Orchestrator) DrawingStart(sid core.SessionID, req protocol.DrawingAction) error {
	rs, occ, err := o.authorize(sid, domain.RoomID(req.RoomID))
	if err != nil {
		return err
	}
	action := req.Action
	stamp(&action, sid, occ)
	o.toOthers(rs, sid, protocol.NewDrawingUpdate(protocol.PhaseStart, string(sid), &action))
	return nil
}

// DrawingMove is fire-and-forget preview traffic; loss and reordering
// are acceptable, so authorization failures are silently dropped.
func (o *Orchestrator) DrawingMove(sid core.SessionID, req protocol.DrawingMove) {
	rs, _, err := o.authorize(sid, domain.RoomID(req.RoomID))
	if err != nil {
		return
	}
	o.toOthers(rs, sid, protocol.NewDrawingMoveUpdate(string(sid), req.Coordinates))
}

// DrawingEnd commits the finished action: queued, assigned a per-room
// sequence number, appended durably, then broadcast to the room minus
// the sender. A persist failure suppresses the broadcast and leaves no
// sequence gap.
func (o *Orchestrator) DrawingEnd(ctx context.Context, sid core.SessionID, req protocol.DrawingAction) error {
	roomID := domain.RoomID(req.RoomID)
	if _, _, err := o.authorize(sid, roomID); err != nil {
		return err
	}
	return o.Seq.Do(ctx, roomID, func(u *app.Unit) error {
		rs, occ, err := o.authorize(sid, roomID)
		if err != nil {
			return err
		}
		seq, err := u.NextSeq(func() (uint64, error) {
			sctx, cancel := o.storeCtx()
			defer cancel()
			return o.Store.LastSeq(sctx, roomID)
		})
		if err != nil {
			return persistErr(err)
		}

		action := req.Action
		stamp(&action, sid, occ)
		action.Seq = seq

		sctx, cancel := o.storeCtx()
		err = o.Store.AppendAction(sctx, roomID, action)
		cancel()
		if err != nil {
			return persistErr(err)
		}
		u.CommitSeq(seq)

		o.toOthers(rs, sid, protocol.NewDrawingUpdate(protocol.PhaseEnd, string(sid), &action))
		log.Debug().Str("module", "orch").Str("room", string(roomID)).Str("action", action.ID).Uint64("seq", seq).Msg("action committed")
		return nil
	})
}

// ClearCanvas truncates the durable log, resets the sequence counter
// and notifies the whole room, the initiator included.
func (o *Orchestrator) ClearCanvas(ctx context.Context, sid core.SessionID, roomID domain.RoomID) error {
	if _, _, err := o.authorize(sid, roomID); err != nil {
		return err
	}
	return o.Seq.Do(ctx, roomID, func(u *app.Unit) error {
		rs, _, err := o.authorize(sid, roomID)
		if err != nil {
			return err
		}
		sctx, cancel := o.storeCtx()
		err = o.Store.ClearLog(sctx, roomID, string(sid))
		cancel()
		if err != nil {
			return persistErr(err)
		}
		u.ResetSeq()

		o.toRoom(rs, protocol.NewCanvasCleared(string(sid)))
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(sid)).Msg("canvas cleared")
		return nil
	})
}

// UndoAction removes the action with the given id from the durable
// log. An absent id is a no-op, not an error; the action-undone notice
// still goes to the whole room so every client converges.
func (o *Orchestrator) UndoAction(ctx context.Context, sid core.SessionID, roomID domain.RoomID, actionID string) error {
	if _, _, err := o.authorize(sid, roomID); err != nil {
		return err
	}
	return o.Seq.Do(ctx, roomID, func(*app.Unit) error {
		rs, _, err := o.authorize(sid, roomID)
		if err != nil {
			return err
		}
		sctx, cancel := o.storeCtx()
		err = o.Store.RemoveAction(sctx, roomID, actionID)
		cancel()
		if err != nil {
			return persistErr(err)
		}

		o.toRoom(rs, protocol.NewActionUndone(actionID, string(sid)))
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("action", actionID).Msg("action undone")
		return nil
	})
}

// ClearLog is the HTTP-surface variant of ClearCanvas: no membership
// requirement, but still queued on the room's sequencer so it cannot
// interleave with an in-flight append. Connected occupants, if any,
// are notified.
func (o *Orchestrator) ClearLog(ctx context.Context, roomID domain.RoomID, byUser string) error {
	return o.Seq.Do(ctx, roomID, func(u *app.Unit) error {
		sctx, cancel := o.storeCtx()
		err := o.Store.ClearLog(sctx, roomID, byUser)
		cancel()
		if err != nil {
			return persistErr(err)
		}
		u.ResetSeq()
		if rs, ok := o.Rooms.Get(roomID); ok {
			o.toRoom(rs, protocol.NewCanvasCleared(byUser))
		}
		return nil
	})
}

// CursorMove mirrors cursor positions to the room minus the sender;
// never queued, never persisted.
func (o *Orchestrator) CursorMove(sid core.SessionID, req protocol.CursorMove) {
	rs, occ, err := o.authorize(sid, domain.RoomID(req.RoomID))
	if err != nil {
		return
	}
	o.toOthers(rs, sid, protocol.NewCursorPosition(occ, req.X, req.Y))
}

func stamp(action *domain.Action, sid core.SessionID, occ domain.Occupant) {
	action.UserID = string(sid)
	action.Username = occ.Username
	if action.Timestamp == 0 {
		action.Timestamp = time.Now().UnixMilli()
	}
}
