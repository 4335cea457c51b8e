package core

import (
	"net"
	"strconv"
	"testing"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

// discardConn swallows writes so the benchmark measures the fan-out itself.
type discardConn struct {
	net.Conn
}

func (discardConn) Write(p []byte) (int, error) { return len(p), nil }

func benchmarkBroadcast(b *testing.B, recipients int) {
	registry := NewRegistry()
	bc := NewBroadcaster(registry, 0, testLogger())

	for i := range recipients {
		c := &Client{ID: strconv.Itoa(i), Name: "client", Conn: &discardConn{}}
		if err := registry.InsertFront(c, nil); err != nil {
			b.Fatalf("insert: %v", err)
		}
	}
	payload := proto.Chat("sender", "payload")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if n := bc.Broadcast(payload, nil); n != recipients {
			b.Fatalf("delivered %d of %d", n, recipients)
		}
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
