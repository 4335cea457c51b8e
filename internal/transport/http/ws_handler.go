package http

import (
	"context"
	"net"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// WSHandler upgrades HTTP connections and feeds the resulting binary stream
// into the relay's admission path, exactly like a raw TCP connection.
type WSHandler struct {
	ctx   context.Context
	relay Relay
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(ctx context.Context, relay Relay, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{ctx: ctx, relay: relay, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	// Frame sizes are governed by the relay's own length prefix.
	ws.SetReadLimit(-1)

	conn := newSessionConn(websocket.NetConn(h.ctx, ws, websocket.MessageBinary))
	h.log.Debug().Str("addr", r.RemoteAddr).Msg("ws session opened")

	h.relay.Admit(conn)

	// The relay owns conn from here on; keep the handler alive until it lets go.
	select {
	case <-conn.closed:
	case <-h.ctx.Done():
		_ = conn.Close()
	}
	h.log.Debug().Str("addr", r.RemoteAddr).Msg("ws session closed")
}

// sessionConn signals when the relay closes the bridged connection.
type sessionConn struct {
	net.Conn
	once   sync.Once
	closed chan struct{}
}

func newSessionConn(conn net.Conn) *sessionConn {
	return &sessionConn{Conn: conn, closed: make(chan struct{})}
}

func (c *sessionConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { close(c.closed) })
	return err
}
