package core

import (
	"bytes"
	"io"
	"net"
	"time"

	"github.com/vovakirdan/wirerelay/internal/utils"
)

// Client is a logged-in chat participant. The registry entry owns it; workers
// only keep the socket.
type Client struct {
	ID       string
	Name     string
	Addr     string
	Conn     net.Conn
	JoinedAt time.Time
}

// NewClient constructs a client for an accepted socket.
func NewClient(conn net.Conn, name string) *Client {
	return &Client{
		ID:       utils.NewID(),
		Name:     name,
		Addr:     remoteAddr(conn),
		Conn:     conn,
		JoinedAt: time.Now(),
	}
}

func remoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// prefixConn replays bytes that arrived together with the handshake line
// before reading from the socket again.
type prefixConn struct {
	net.Conn
	r io.Reader
}

func newPrefixConn(conn net.Conn, leftover []byte) net.Conn {
	buf := make([]byte, len(leftover))
	copy(buf, leftover)
	return &prefixConn{
		Conn: conn,
		r:    io.MultiReader(bytes.NewReader(buf), conn),
	}
}

func (c *prefixConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
