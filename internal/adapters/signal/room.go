package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
)

func (ctl *Controller) handleJoinRoom(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.JoinRoom
	if err := protocol.Decode(data, &req); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		ctl.sendError(c, "Room ID and username are required", err)
		return
	}
	if err := ctl.Orch.JoinRoom(ctx, sid, req); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", req.RoomID).Msg("join failed")
		ctl.sendError(c, errorMessage(err, "Failed to join room"), err)
	}
}

func (ctl *Controller) handleLeaveRoom(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.LeaveRoom
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID is required", err)
		return
	}
	if err := ctl.Orch.LeaveRoom(ctx, sid, domain.RoomID(req.RoomID)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("leave failed")
	}
}

// handleGetRoomUsers is a read-only query that bypasses the sequencer.
func (ctl *Controller) handleGetRoomUsers(sid core.SessionID, c *WsConn, data []byte) {
	var req protocol.GetRoomUsers
	if err := protocol.Decode(data, &req); err != nil {
		ctl.sendError(c, "Room ID is required", err)
		return
	}
	users := ctl.Orch.OccupantsOf(domain.RoomID(req.RoomID))
	ctl.sendJSON(c, protocol.NewRoomUsers(req.RoomID, users))
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("room", req.RoomID).Int("count", len(users)).Msg("room users")
}
