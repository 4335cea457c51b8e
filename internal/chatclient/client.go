// Package chatclient speaks the relay's wire protocol from the client side.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

var (
	// ErrBusy is returned by Login when every worker is at capacity.
	ErrBusy = errors.New("server busy")
	// ErrRejected is returned by Login for any reply other than LOGGED or BUSY.
	ErrRejected = errors.New("login rejected")
)

// Client is a single relay connection.
type Client struct {
	conn net.Conn
}

// Dial connects to a relay at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Conn exposes the underlying connection.
func (c *Client) Conn() net.Conn {
	return c.conn
}

// Login sends the handshake line and waits for the server's verdict.
func (c *Client) Login(name string) error {
	if _, err := c.conn.Write(proto.Login(name)); err != nil {
		return fmt.Errorf("send login: %w", err)
	}
	reply, err := proto.ReadFrame(c.conn)
	if err != nil {
		return fmt.Errorf("read login reply: %w", err)
	}
	switch string(reply) {
	case proto.ReplyLogged:
		return nil
	case proto.ReplyBusy:
		return ErrBusy
	default:
		return fmt.Errorf("%w: %s", ErrRejected, reply)
	}
}

// Send posts a chat message.
func (c *Client) Send(text string) error {
	return proto.WriteFrame(c.conn, proto.Message(text))
}

// SendRaw writes an arbitrary frame payload.
func (c *Client) SendRaw(payload []byte) error {
	return proto.WriteFrame(c.conn, payload)
}

// Logout asks the server to end the session.
func (c *Client) Logout() error {
	return proto.WriteFrame(c.conn, []byte(proto.OpLogout))
}

// Next blocks for the next server notification.
func (c *Client) Next() (proto.Event, error) {
	payload, err := proto.ReadFrame(c.conn)
	if err != nil {
		return proto.Event{}, err
	}
	return proto.ParseEvent(payload), nil
}

// SetReadDeadline bounds the next reads.
func (c *Client) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Close drops the connection without logging out.
func (c *Client) Close() error {
	return c.conn.Close()
}
