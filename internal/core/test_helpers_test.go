package core

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/chatclient"
	"github.com/vovakirdan/wirerelay/internal/proto"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// startHub runs a hub behind a loopback listener and returns its address.
func startHub(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	return startHubWithLogger(t, opts, testLogger())
}

func startHubWithLogger(t *testing.T, opts Options, logger *zerolog.Logger) (*Hub, string) {
	t.Helper()

	hub := NewHub(opts, logger)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		hub.Run(ctx)
	}()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go hub.Admit(conn)
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		cancel()
		<-stopped
		hub.Close()
	})
	return hub, ln.Addr().String()
}

func dial(t *testing.T, addr string) *chatclient.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := chatclient.Dial(ctx, addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func mustLogin(t *testing.T, addr, name string) *chatclient.Client {
	t.Helper()

	c := dial(t, addr)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := c.Login(name); err != nil {
		t.Fatalf("login %s: %v", name, err)
	}
	return c
}

func mustEvent(t *testing.T, c *chatclient.Client, op, raw string) proto.Event {
	t.Helper()

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	ev, err := c.Next()
	if err != nil {
		t.Fatalf("expected %q, got error: %v", raw, err)
	}
	if ev.Op != op || ev.Raw != raw {
		t.Fatalf("expected %q, got %q", raw, ev.Raw)
	}
	return ev
}

// expectSilence fails if c receives anything within d.
func expectSilence(t *testing.T, c *chatclient.Client, d time.Duration) {
	t.Helper()

	_ = c.SetReadDeadline(time.Now().Add(d))
	ev, err := c.Next()
	if err == nil {
		t.Fatalf("expected no traffic, got %q", ev.Raw)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected read timeout, got %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// syncBuffer collects log output written from several goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func totalLoad(h *Hub) int {
	total := 0
	for _, l := range h.Loads() {
		total += l.Load
	}
	return total
}

func rosterNames(h *Hub) []string {
	clients := h.Roster()
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.Name
	}
	return names
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
