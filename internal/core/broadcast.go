package core

import (
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

// Broadcaster writes frames to registered clients.
type Broadcaster struct {
	registry     *Registry
	writeTimeout time.Duration
	log          zerolog.Logger
}

// NewBroadcaster builds a broadcaster over registry. A zero writeTimeout lets
// writes block for as long as the peer does.
func NewBroadcaster(registry *Registry, writeTimeout time.Duration, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		registry:     registry,
		writeTimeout: writeTimeout,
		log:          logger.With().Str("component", "broadcast").Logger(),
	}
}

// Broadcast sends payload to every registered client except exclude, head to
// tail, under the registry lock. Failed writes are neither retried nor treated
// as a disconnect; the owning worker notices that on its own read side.
// It returns the number of clients the frame was written to.
func (b *Broadcaster) Broadcast(payload []byte, exclude *Client) int {
	delivered := 0
	b.registry.Range(func(c *Client) bool {
		if c == exclude {
			return true
		}
		if err := b.Send(c.Conn, payload); err != nil {
			b.log.Debug().Err(err).Str("client_id", c.ID).Str("name", c.Name).Msg("broadcast write failed")
			return true
		}
		delivered++
		return true
	})
	return delivered
}

// Send writes a single frame to conn, honouring the write timeout.
func (b *Broadcaster) Send(conn net.Conn, payload []byte) error {
	if b.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}
	return proto.WriteFrame(conn, payload)
}
