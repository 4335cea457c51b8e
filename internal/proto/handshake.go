package proto

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLen bounds a display name in bytes.
	MaxNameLen = 20
	// HandshakeBufferSize is the size of the single read used to classify a connection.
	HandshakeBufferSize = 4096

	loginKeyword = "LOGIN"
)

// ErrBadHandshake is returned for a LOGIN line that carries no name.
var ErrBadHandshake = errors.New("bad handshake")

// RequestKind classifies the first bytes received on a fresh connection.
type RequestKind int

const (
	// RequestUnknown is anything that is neither a login nor an HTTP request.
	RequestUnknown RequestKind = iota
	// RequestLogin is an unframed "LOGIN <name>" line.
	RequestLogin
	// RequestHTTP is a plain HTTP GET.
	RequestHTTP
)

func (k RequestKind) String() string {
	switch k {
	case RequestLogin:
		return "login"
	case RequestHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// SplitRequest separates the first line of buf from whatever followed it.
// Without a newline the whole buffer is the line.
func SplitRequest(buf []byte) (line, rest []byte) {
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		return buf[:i], buf[i+1:]
	}
	return buf, nil
}

// Classify reports what kind of request line was received.
func Classify(line []byte) RequestKind {
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return RequestUnknown
	}
	switch {
	case fields[0] == loginKeyword:
		return RequestLogin
	case fields[0] == "GET" && len(fields) > 1 && strings.HasPrefix(fields[1], "/"):
		return RequestHTTP
	default:
		return RequestUnknown
	}
}

// ParseLogin extracts the display name from a LOGIN line. The name is the second
// whitespace-delimited token, silently truncated to MaxNameLen bytes.
func ParseLogin(line []byte) (string, error) {
	fields := strings.Fields(string(line))
	if len(fields) < 2 || fields[0] != loginKeyword {
		return "", ErrBadHandshake
	}
	return TruncateName(fields[1]), nil
}

// TruncateName cuts name to MaxNameLen bytes without leaving a partial rune behind.
func TruncateName(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	name = name[:MaxNameLen]
	for i := 0; i < utf8.UTFMax-1 && len(name) > 0; i++ {
		r, size := utf8.DecodeLastRuneInString(name)
		if r != utf8.RuneError || size != 1 {
			break
		}
		name = name[:len(name)-1]
	}
	return name
}

// Login builds the handshake line a client sends.
func Login(name string) []byte {
	return []byte(loginKeyword + " " + name)
}
