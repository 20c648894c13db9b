package signal

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
)

func (ctl *Controller) handleDrawingStart(sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.DrawingAction
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID and action are required", err)
		return
	}
	if err := ctl.Orch.DrawingStart(sid, req); err != nil {
		ctl.sendError(c, errorMessage(err, "Failed to start drawing"), err)
	}
}

// handleDrawingMove is fire-and-forget: malformed or unauthorized
// traffic is dropped without an error reply to avoid error spam.
func (ctl *Controller) handleDrawingMove(sid core.SessionID, data []byte) {
	var req protocol.DrawingMove
	if err := protocol.Decode(data, &req); err != nil {
		return
	}
	if !ctl.Cursors.Allow(sid) {
		return
	}
	ctl.Orch.DrawingMove(sid, req)
}

func (ctl *Controller) handleDrawingEnd(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.DrawingAction
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID and action are required", err)
		return
	}
	if err := ctl.Orch.DrawingEnd(ctx, sid, req); err != nil {
		if errors.Is(err, domain.ErrPersistFailure) {
			log.Error().Err(err).Str("module", "signal").Str("room", req.RoomID).Str("action", req.Action.ID).Msg("append failed")
		}
		ctl.sendError(c, errorMessage(err, "Failed to save drawing"), err)
	}
}

func (ctl *Controller) handleClearCanvas(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.ClearCanvas
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID is required", err)
		return
	}
	if err := ctl.Orch.ClearCanvas(ctx, sid, domain.RoomID(req.RoomID)); err != nil {
		ctl.sendError(c, errorMessage(err, "Failed to clear canvas"), err)
	}
}

func (ctl *Controller) handleUndoAction(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.UndoAction
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID and action ID are required", err)
		return
	}
	if err := ctl.Orch.UndoAction(ctx, sid, domain.RoomID(req.RoomID), req.ActionID); err != nil {
		ctl.sendError(c, errorMessage(err, "Failed to undo action"), err)
	}
}
