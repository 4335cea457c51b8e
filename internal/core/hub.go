package core

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

const httpNotFound = "HTTP/1.0 404 Not Found\r\n\r\nPage not found"

// Options tunes a Hub.
type Options struct {
	Workers          int
	ClientsPerWorker int
	MaxFrameSize     int
	WriteTimeout     time.Duration
}

// Hub coordinates admission, message dispatch and presence for the relay.
type Hub struct {
	registry    *Registry
	pool        *Pool
	broadcaster *Broadcaster
	log         *zerolog.Logger

	// closing is set once Close starts draining; hang-ups after that are expected.
	closing atomic.Bool
}

// NewHub creates a hub with its worker pool. Call Run to start the workers.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if opts.ClientsPerWorker < 1 {
		opts.ClientsPerWorker = 1
	}
	registry := NewRegistry()
	h := &Hub{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, opts.WriteTimeout, logger),
		log:         logger,
	}
	h.pool = NewPool(opts.Workers, opts.ClientsPerWorker, opts.MaxFrameSize, h, logger)
	return h
}

// Run starts the worker loops and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.pool.Run(ctx)
}

// Workers returns the size of the worker pool.
func (h *Hub) Workers() int {
	return h.pool.Size()
}

// MaxClients returns the total slot capacity across workers.
func (h *Hub) MaxClients() int {
	return h.pool.Capacity()
}

// Roster returns the registered clients, most recently joined first.
func (h *Hub) Roster() []*Client {
	return h.registry.Snapshot()
}

// Loads returns the per-worker load table.
func (h *Hub) Loads() []WorkerLoad {
	return h.pool.Loads()
}

// Close disconnects every registered client.
func (h *Hub) Close() {
	h.closing.Store(true)
	for _, c := range h.registry.Drain() {
		_ = c.Conn.Close()
	}
}

// Admit runs the handshake for a freshly accepted connection. It blocks on a
// single read, then either registers the client with a worker or closes conn.
func (h *Hub) Admit(conn net.Conn) {
	logger := h.log.With().Str("addr", remoteAddr(conn)).Logger()

	buf := make([]byte, proto.HandshakeBufferSize)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		logger.Debug().Err(err).Msg("handshake read failed")
		_ = conn.Close()
		return
	}
	line, rest := proto.SplitRequest(buf[:n])

	switch kind := proto.Classify(line); kind {
	case proto.RequestLogin:
	case proto.RequestHTTP:
		logger.Debug().Str("request", string(line)).Msg("plain http request on chat port")
		_, _ = conn.Write([]byte(httpNotFound))
		_ = conn.Close()
		return
	default:
		logger.Debug().Stringer("kind", kind).Msg("unrecognized request")
		_ = conn.Close()
		return
	}

	name, err := proto.ParseLogin(line)
	if err != nil {
		rejection := coreError(ReasonBadHandshake, "missing name")
		logger.Warn().Err(err).Str("reason", Reason(rejection)).Msg("rejected login")
		_ = h.broadcaster.Send(conn, proto.Failure(rejection.Message))
		_ = conn.Close()
		return
	}
	if len(rest) > 0 {
		conn = newPrefixConn(conn, rest)
	}

	w, slot, err := h.pool.Assign()
	if err != nil {
		logger.Warn().Str("name", name).Str("reason", Reason(err)).Msg("server busy")
		_ = h.broadcaster.Send(conn, []byte(proto.ReplyBusy))
		_ = conn.Close()
		return
	}

	client := NewClient(conn, name)
	err = h.registry.InsertFront(client, func(roster []*Client) error {
		if err := h.broadcaster.Send(conn, []byte(proto.ReplyLogged)); err != nil {
			return err
		}
		for _, c := range roster {
			if err := h.broadcaster.Send(conn, proto.Joined(c.Name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("name", name).Msg("login failed")
		w.Release(slot)
		_ = conn.Close()
		return
	}

	w.Watch(slot, conn)
	logger.Info().
		Str("client_id", client.ID).
		Str("name", name).
		Int("worker", w.Index()).
		Msg("logged in")

	h.broadcaster.Broadcast(proto.Joined(name), client)
}

// HandleFrame dispatches one frame from a watched socket.
func (h *Hub) HandleFrame(conn net.Conn, payload []byte) bool {
	client := h.registry.FindByConn(conn)
	if client == nil {
		h.inconsistent(conn)
		return false
	}

	cmd := proto.ParseCommand(payload)
	switch cmd.Op {
	case proto.OpMsg:
		h.log.Debug().Str("client_id", client.ID).Str("name", client.Name).Str("text", cmd.Arg).Msg("message")
		h.broadcaster.Broadcast(proto.Chat(client.Name, cmd.Arg), nil)
	case proto.OpLogout:
		h.logout(client, nil)
		return false
	}
	return true
}

// HandleHangup tears down a client whose socket failed or closed.
func (h *Hub) HandleHangup(conn net.Conn, err error) {
	client := h.registry.FindByConn(conn)
	if client == nil {
		h.inconsistent(conn)
		return
	}
	h.logout(client, err)
}

// logout removes c, closes its socket and announces the departure.
func (h *Hub) logout(c *Client, cause error) {
	if !h.registry.Remove(c) {
		return
	}
	_ = c.Conn.Close()

	ev := h.log.Info()
	if cause != nil && !errors.Is(cause, proto.ErrDisconnected) {
		ev = h.log.Warn().Err(cause)
	}
	ev.Str("client_id", c.ID).
		Str("name", c.Name).
		Str("reason", Reason(cause)).
		Msg("logged out")

	h.broadcaster.Broadcast(proto.Left(c.Name), nil)
}

func (h *Hub) inconsistent(conn net.Conn) {
	if h.closing.Load() {
		h.log.Debug().Str("addr", remoteAddr(conn)).Msg("hang-up during shutdown")
		_ = conn.Close()
		return
	}
	h.log.Error().
		Err(ErrRegistryInconsistency).
		Str("addr", remoteAddr(conn)).
		Str("reason", Reason(ErrRegistryInconsistency)).
		Msg("watched socket has no registry entry")
	_ = conn.Close()
}
