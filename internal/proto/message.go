package proto

import "strings"

// Opcodes carried as the space-delimited prefix of a frame payload.
const (
	OpMsg    = "MSG"
	OpNew    = "NEW"
	OpOut    = "OUT"
	OpLogout = "LOGOUT"
	OpError  = "ERROR"

	ReplyLogged = "LOGGED"
	ReplyBusy   = "BUSY"
)

// Command is an inbound post-login request.
type Command struct {
	Op  string
	Arg string
}

// ParseCommand splits a payload into its opcode and the remainder after the first space.
func ParseCommand(payload []byte) Command {
	op, arg, _ := strings.Cut(string(payload), " ")
	return Command{Op: op, Arg: arg}
}

// Chat builds the relayed form of a chat message.
func Chat(name, text string) []byte {
	return []byte(OpMsg + " " + name + ": " + text)
}

// Joined builds a presence join notification.
func Joined(name string) []byte {
	return []byte(OpNew + " " + name)
}

// Left builds a presence leave notification.
func Left(name string) []byte {
	return []byte(OpOut + " " + name)
}

// Failure builds a handshake failure reply.
func Failure(reason string) []byte {
	return []byte(OpError + " " + reason)
}

// Message builds an outbound chat request as sent by a client.
func Message(text string) []byte {
	return []byte(OpMsg + " " + text)
}

// Event is a server notification as seen by a client.
type Event struct {
	Op   string
	Name string // NEW/OUT subject or MSG author
	Text string // MSG body
	Raw  string
}

// ParseEvent decodes a server-to-client payload.
func ParseEvent(payload []byte) Event {
	raw := string(payload)
	cmd := ParseCommand(payload)
	ev := Event{Op: cmd.Op, Raw: raw}
	switch cmd.Op {
	case OpNew, OpOut:
		ev.Name = cmd.Arg
	case OpMsg:
		name, text, ok := strings.Cut(cmd.Arg, ": ")
		if ok {
			ev.Name = name
			ev.Text = text
		} else {
			ev.Text = cmd.Arg
		}
	}
	return ev
}
