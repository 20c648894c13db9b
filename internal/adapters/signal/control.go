package signal

import "github.com/inklab/sketchroom/internal/protocol"

func (ctl *Controller) handlePing(c *WsConn) {
	ctl.sendJSON(c, protocol.NewPong())
}
