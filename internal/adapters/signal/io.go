package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/domain"
	"github.com/inklab/sketchroom/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ping := time.NewTicker(ctl.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(context.Background(), sid)
		ctl.Cursors.Forget(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.dispatch(ctx, sid, c, data)
		}
	}
}

func (ctl *Controller) dispatch(ctx context.Context, sid core.SessionID, c *WsConn, data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad envelope")
		ctl.sendError(c, "Invalid payload", err)
		return
	}

	switch env.Type {
	case protocol.EvtJoinRoom:
		ctl.handleJoinRoom(ctx, sid, c, data)
	case protocol.EvtLeaveRoom:
		ctl.handleLeaveRoom(ctx, sid, c, data)
	case protocol.EvtGetRoomUsers:
		ctl.handleGetRoomUsers(sid, c, data)
	case protocol.EvtDrawingStart:
		ctl.handleDrawingStart(sid, c, data)
	case protocol.EvtDrawingMove:
		ctl.handleDrawingMove(sid, data)
	case protocol.EvtDrawingEnd:
		ctl.handleDrawingEnd(ctx, sid, c, data)
	case protocol.EvtClearCanvas:
		ctl.handleClearCanvas(ctx, sid, c, data)
	case protocol.EvtUndoAction:
		ctl.handleUndoAction(ctx, sid, c, data)
	case protocol.EvtCursorMove:
		ctl.handleCursorMove(sid, data)
	case protocol.EvtPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		ctl.sendError(c, "Unknown event type", nil)
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendError reports a failure to the requester only.
func (ctl *Controller) sendError(c *WsConn, message string, cause error) {
	ev := protocol.NewError(message, "")
	if cause != nil {
		ev.Cause = cause.Error()
	}
	ctl.sendJSON(c, ev)
}

// errorMessage translates the operation-error taxonomy into the
// messages clients display.
func errorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, domain.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, domain.ErrNotInRoom):
		return "You are not in this room"
	case errors.Is(err, domain.ErrInvalidPayload):
		return "Invalid payload"
	case errors.Is(err, domain.ErrPersistFailure):
		return fallback
	}
	return fallback
}
