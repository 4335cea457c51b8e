package tcp

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/chatclient"
	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/proto"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type countingAdmitter struct {
	n atomic.Int32
}

func (a *countingAdmitter) Admit(conn net.Conn) {
	a.n.Add(1)
	_ = conn.Close()
}

func startServer(t *testing.T, hub Admitter, rate float64, burst int) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()

	srv, err := Listen("127.0.0.1:0", hub, rate, burst, nopLogger())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(cancel)
	return srv, cancel, done
}

func TestServeStopsOnCancel(t *testing.T) {
	_, cancel, done := startServer(t, &countingAdmitter{}, 0, 0)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("serve did not stop")
	}
}

func TestServeHandsConnectionsToAdmitter(t *testing.T) {
	admitter := &countingAdmitter{}
	srv, _, _ := startServer(t, admitter, 0, 0)

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		_ = conn.Close()
	}

	deadline := time.Now().Add(2 * time.Second)
	for admitter.n.Load() != 3 {
		if time.Now().After(deadline) {
			t.Fatalf("admitted %d of 3", admitter.n.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeThrottlesAccepts(t *testing.T) {
	admitter := &countingAdmitter{}
	srv, _, _ := startServer(t, admitter, 5, 1)

	for i := 0; i < 4; i++ {
		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
	}

	time.Sleep(100 * time.Millisecond)
	if n := admitter.n.Load(); n >= 4 {
		t.Fatalf("expected throttled accepts, got %d within 100ms", n)
	}
}

func TestChatScenario(t *testing.T) {
	hub := core.NewHub(core.Options{Workers: 2, ClientsPerWorker: 8}, nopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	t.Cleanup(hub.Close)

	srv, _, _ := startServer(t, hub, 0, 0)
	addr := srv.Addr().String()

	login := func(name string) *chatclient.Client {
		c, err := chatclient.Dial(ctx, addr)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := c.Login(name); err != nil {
			t.Fatalf("login %s: %v", name, err)
		}
		return c
	}
	next := func(c *chatclient.Client, want string) {
		t.Helper()
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		ev, err := c.Next()
		if err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if ev.Raw != want {
			t.Fatalf("got %q, want %q", ev.Raw, want)
		}
	}

	alice := login("alice")
	bob := login("bob")
	next(alice, "NEW bob")
	next(bob, "NEW alice")

	if err := alice.Send("hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	next(alice, string(proto.Chat("alice", "hi")))
	next(bob, "MSG alice: hi")

	_ = bob.Close()
	next(alice, "OUT bob")
}
