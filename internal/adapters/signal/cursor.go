package signal

import (
	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/protocol"
)

// handleCursorMove mirrors cursor positions to the rest of the room.
// Invalid or over-rate traffic is silently dropped.
func (ctl *Controller) handleCursorMove(sid core.SessionID, data []byte) {
	var req protocol.CursorMove
	if err := protocol.Decode(data, &req); err != nil {
		return
	}
	if !ctl.Cursors.Allow(sid) {
		return
	}
	ctl.Orch.CursorMove(sid, req)
}
