package core

import "net"

// CommandKind describes a change to a worker's slot table.
type CommandKind int

const (
	// CommandAdd starts watching a socket in a previously claimed slot.
	CommandAdd CommandKind = iota
	// CommandRemove vacates a slot.
	CommandRemove
)

func (k CommandKind) String() string {
	switch k {
	case CommandAdd:
		return "add"
	case CommandRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Command is a control record delivered over a worker's control channel.
type Command struct {
	Kind CommandKind
	Slot int
	Conn net.Conn
}
