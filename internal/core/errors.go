package core

import (
	"errors"

	"github.com/vovakirdan/wirerelay/internal/proto"
)

// Reason codes attached to disconnects and rejections in logs.
const (
	ReasonOrderlyDisconnect     = "orderly_disconnect"
	ReasonProtocolError         = "protocol_error"
	ReasonConnectionError       = "connection_error"
	ReasonCapacityExceeded      = "capacity_exceeded"
	ReasonRegistryInconsistency = "registry_inconsistency"
	ReasonBadHandshake          = "bad_handshake"
	ReasonLogout                = "logout"
	ReasonUnknown               = "unknown"
)

var (
	ErrCapacityExceeded      = errors.New("all workers at capacity")
	ErrRegistryInconsistency = errors.New("socket not found in registry")
	ErrAlreadyRegistered     = errors.New("client already registered")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// Reason maps an error onto one of the Reason* codes.
func Reason(err error) string {
	var connErr *proto.ConnError
	var coreErr *CoreError
	switch {
	case err == nil:
		return ReasonLogout
	case errors.As(err, &coreErr):
		return coreErr.Code
	case errors.Is(err, proto.ErrDisconnected):
		return ReasonOrderlyDisconnect
	case errors.Is(err, proto.ErrMalformedFrame):
		return ReasonProtocolError
	case errors.As(err, &connErr):
		return ReasonConnectionError
	case errors.Is(err, ErrCapacityExceeded):
		return ReasonCapacityExceeded
	case errors.Is(err, ErrRegistryInconsistency):
		return ReasonRegistryInconsistency
	case errors.Is(err, proto.ErrBadHandshake):
		return ReasonBadHandshake
	default:
		return ReasonUnknown
	}
}
