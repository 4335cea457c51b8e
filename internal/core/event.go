package core

import "net"

// EventKind is a readiness notification raised for a watched slot.
type EventKind int

const (
	// EventFrame carries one complete inbound frame.
	EventFrame EventKind = iota
	// EventHangup reports that reading from the socket failed or hit EOF.
	EventHangup
)

// Event is produced by a slot's reader and consumed by the owning worker loop.
type Event struct {
	Kind    EventKind
	Slot    int
	Conn    net.Conn
	Payload []byte
	Err     error
}
