// Package signal is the WebSocket adapter: it owns the connection
// lifecycle and translates wire events into orchestrator calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/inklab/sketchroom/internal/app/orch"
	"github.com/inklab/sketchroom/internal/core"
	"github.com/inklab/sketchroom/internal/protocol"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch       *orch.Orchestrator
	Cursors    *RateLimiter
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(o *orch.Orchestrator, cursors *RateLimiter, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Orch:       o,
		Cursors:    cursors,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// WsConn wraps a websocket with a buffered send channel. TrySend drops
// under backpressure instead of blocking a broadcast.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection until it drops.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, conn, cancel)

	ctl.sendJSON(conn, protocol.NewConnected(string(sid)))

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
