package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Admitter runs the login handshake for an accepted connection.
type Admitter interface {
	Admit(conn net.Conn)
}

// Server accepts raw chat connections and hands each one to the admitter on
// its own goroutine.
type Server struct {
	ln      net.Listener
	hub     Admitter
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Listen binds addr. acceptRate <= 0 disables accept throttling.
func Listen(addr string, hub Admitter, acceptRate float64, acceptBurst int, logger *zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return NewServer(ln, hub, acceptRate, acceptBurst, logger), nil
}

// NewServer wraps an existing listener.
func NewServer(ln net.Listener, hub Admitter, acceptRate float64, acceptBurst int, logger *zerolog.Logger) *Server {
	var limiter *rate.Limiter
	if acceptRate > 0 {
		if acceptBurst < 1 {
			acceptBurst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(acceptRate), acceptBurst)
	}
	return &Server{
		ln:      ln,
		hub:     hub,
		limiter: limiter,
		log:     logger.With().Str("component", "acceptor").Logger(),
	}
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts until ctx is cancelled or the listener is closed.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.ln.Close() })
	defer stop()

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept error")
			time.Sleep(10 * time.Millisecond)
			continue
		}

		s.log.Debug().Str("addr", conn.RemoteAddr().String()).Msg("connected")
		go s.hub.Admit(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}
